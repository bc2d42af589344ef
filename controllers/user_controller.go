package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	Profiles *services.ProfileService
	Users    *services.UserService
}

func NewUserController(profiles *services.ProfileService, users *services.UserService) *UserController {
	return &UserController{Profiles: profiles, Users: users}
}

type profileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Birthday *string `json:"birthday"` // YYYY-MM-DD
	Gender   *string `json:"gender"`
	ImageKey *string `json:"imageKey"`
}

func (r profileRequest) input() (services.ProfileInput, error) {
	in := services.ProfileInput{
		Name:     r.Name,
		Username: r.Username,
		Bio:      r.Bio,
		Gender:   r.Gender,
		ImageKey: r.ImageKey,
	}
	if r.Birthday != nil {
		birthday, err := time.Parse("2006-01-02", *r.Birthday)
		if err != nil {
			return in, fmt.Errorf("birthday must be formatted as YYYY-MM-DD")
		}
		in.Birthday = &birthday
	}
	return in, nil
}

// GetMe returns the caller's own profile.
func (uc *UserController) GetMe(c *gin.Context) {
	viewer := viewerID(c)
	profile, err := uc.Profiles.ResolveProfile(c.Request.Context(), viewer, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: profile})
}

// GetUserProfile godoc
// @Summary Get a user's profile
// @Description Returns the projection of the user the caller may see
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} services.Profile
// @Router /users/{userId}/profile [get]
func (uc *UserController) GetUserProfile(c *gin.Context) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := uc.Profiles.ResolveProfile(c.Request.Context(), viewerID(c), uri.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: profile})
}

func (uc *UserController) CompleteOnboarding(c *gin.Context) {
	uc.saveProfile(c, uc.Users.CompleteOnboarding, http.StatusOK, "Onboarding completed")
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	uc.saveProfile(c, uc.Users.UpdateProfile, http.StatusOK, "Profile updated successfully")
}

type profileSaver func(ctx context.Context, viewerID string, in services.ProfileInput) (*models.User, []string, error)

func (uc *UserController) saveProfile(c *gin.Context, save profileSaver, status int, message string) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}

	viewer := viewerID(c)
	_, orphaned, err := save(c.Request.Context(), viewer, in)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := uc.Profiles.ResolveProfile(c.Request.Context(), viewer, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := StandardResponse{Success: true, Data: profile, Message: message}
	if len(orphaned) > 0 {
		resp.Meta = gin.H{"orphanedImages": orphaned}
	}
	c.JSON(status, resp)
}

// DeleteAccount removes the caller and everything they own.
func (uc *UserController) DeleteAccount(c *gin.Context) {
	result, err := uc.Users.DeleteAccount(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result, Message: "Account deleted"})
}

func (uc *UserController) SearchUsers(c *gin.Context) {
	var query struct {
		pageQuery
		Q string `form:"q" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	page, err := uc.Users.Search(c.Request.Context(), query.Q, query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       page.Items,
		Pagination: paginationOf(page),
	})
}
