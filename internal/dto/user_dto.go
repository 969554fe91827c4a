package dto

import (
	"io"

	"recipehub/internal/models"
)

// URLFunc resolves a blob key to its public URL.
type URLFunc func(key string) string

// Upload is a file attached to a request.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// UserResponse is the identity representation exposed by the API.
type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	ProfileImage *string `json:"profile_image"`
	Bio          string  `json:"bio"`
	GithubLink   string  `json:"github_link"`
}

func FromUser(user *models.User, resolve URLFunc) *UserResponse {
	resp := &UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		Bio:        user.Bio,
		GithubLink: user.GithubLink,
	}
	if user.ProfileImage != nil {
		url := resolve(*user.ProfileImage)
		resp.ProfileImage = &url
	}
	return resp
}

// PublicTeamMember is the limited view served on the public team page.
type PublicTeamMember struct {
	ID           string  `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	Bio          string  `json:"bio"`
	GithubLink   string  `json:"github_link"`
	ProfileImage *string `json:"profile_image"`
}

func FromUserToPublicTeamMember(user *models.User, resolve URLFunc) *PublicTeamMember {
	member := &PublicTeamMember{
		ID:         user.ID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		Bio:        user.Bio,
		GithubLink: user.GithubLink,
	}
	if user.ProfileImage != nil {
		url := resolve(*user.ProfileImage)
		member.ProfileImage = &url
	}
	return member
}

// UpdateProfileRequest carries partial profile updates; nil fields are left
// untouched. The image, when present, replaces the stored one.
type UpdateProfileRequest struct {
	Username   *string `form:"username" json:"username"`
	Email      *string `form:"email" json:"email"`
	FirstName  *string `form:"first_name" json:"first_name"`
	LastName   *string `form:"last_name" json:"last_name"`
	Bio        *string `form:"bio" json:"bio"`
	GithubLink *string `form:"github_link" json:"github_link"`
}

// UpdateRoleRequest assigns a new role to a user.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateTeamMemberRequest creates a privileged account from the admin
// dashboard.
type CreateTeamMemberRequest struct {
	Username   string `form:"username" json:"username" binding:"required"`
	Email      string `form:"email" json:"email" binding:"required,email"`
	Password   string `form:"password" json:"password" binding:"required,min=8"`
	FirstName  string `form:"first_name" json:"first_name"`
	LastName   string `form:"last_name" json:"last_name"`
	Role       string `form:"role" json:"role"`
	Bio        string `form:"bio" json:"bio"`
	GithubLink string `form:"github_link" json:"github_link"`
}
