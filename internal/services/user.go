package services

import (
	"errors"

	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/internal/utils"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

// UserService handles account administration. All of it sits behind the
// admin route group.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Role     string `form:"role"`
	Search   string `form:"search"`
}

type UserListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.User{})
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("username LIKE ? OR nickname LIKE ? OR email LIKE ? OR company LIKE ?",
			like, like, like, like)
	}

	var total int64
	query.Count(&total)

	var items []models.User
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &UserListResponse{Total: total, Page: req.Page, PageSize: req.PageSize, Items: items}, nil
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role" binding:"required"`
	Company  string `json:"company"`
}

func (s *UserService) Create(req *CreateUserRequest) (*models.User, error) {
	if !authz.Role(req.Role).Valid() {
		return nil, response.NewBadRequest("invalid role")
	}

	var count int64
	s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("username already exists")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: req.Username,
		Password: hashed,
		Email:    req.Email,
		Nickname: req.Nickname,
		Role:     req.Role,
		Company:  req.Company,
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Nickname *string `json:"nickname"`
	Role     *string `json:"role"`
	Company  *string `json:"company"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

func (s *UserService) Update(userID uint, req *UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	if req.Role != nil {
		if !authz.Role(*req.Role).Valid() {
			return nil, response.NewBadRequest("invalid role")
		}
		user.Role = *req.Role
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Nickname != nil {
		user.Nickname = *req.Nickname
	}
	if req.Company != nil {
		user.Company = *req.Company
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete deactivates first, removes second: deleting the last active
// super admin is refused outright.
func (s *UserService) Delete(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if user.Role == string(authz.RoleSuperAdmin) {
		var admins int64
		s.db.Model(&models.User{}).
			Where("role = ? AND is_active = ? AND id <> ?", string(authz.RoleSuperAdmin), true, userID).
			Count(&admins)
		if admins == 0 {
			return response.NewBadRequest("cannot delete the last active super admin")
		}
	}

	return s.db.Delete(&models.User{}, userID).Error
}
