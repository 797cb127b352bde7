// Package authsvc - service người dùng: đăng ký, đăng nhập, hồ sơ, mật khẩu.
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authdto "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/dto"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/models"
	basesvc "github.com/KraitOPP/PerishPro-sub000/internal/api/base/service"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost độ khó khi hash mật khẩu
const BcryptCost = 10

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	users  basesvc.BaseServiceMongo[models.User]
	tokens *TokenService
}

// NewUserService tạo UserService trên store người dùng đã có
func NewUserService(users basesvc.BaseServiceMongo[models.User], tokens *TokenService) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// NewUserServiceFromRegistry lấy collection users từ registry
func NewUserServiceFromRegistry(tokens *TokenService) (*UserService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	return NewUserService(basesvc.NewBaseServiceMongo[models.User](collection), tokens), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp tạo tài khoản mới. Email đã tồn tại trả về 409.
func (s *UserService) SignUp(ctx context.Context, input *authdto.SignUpInput) (*models.User, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.users.DocumentExists(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewConflictError("User already exists with this email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		return nil, common.NewInternalError(err)
	}

	created, err := s.users.InsertOne(ctx, models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: string(hash),
		Phone:    strings.TrimSpace(input.Phone),
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return nil, common.NewConflictError("User already exists with this email")
		}
		return nil, err
	}
	return &created, nil
}

// SignIn kiểm tra email/mật khẩu và phát hành token
func (s *UserService) SignIn(ctx context.Context, input *authdto.SignInInput) (*authdto.AuthResult, error) {
	user, err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(input.Email)}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("User not found")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, common.NewInternalError(err)
	}
	return &authdto.AuthResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UnixMilli(),
		User:      &user,
	}, nil
}

// SignOut thu hồi token nếu có
func (s *UserService) SignOut(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// GetProfile lấy hồ sơ theo id
func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindOneById(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile cập nhật các field được gửi lên. Email mới đã thuộc user khác trả về 409.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input *authdto.UpdateProfileInput) (*models.User, error) {
	set := map[string]interface{}{}
	if input.Name != nil {
		set["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		set["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.StoreName != nil {
		set["storeName"] = strings.TrimSpace(*input.StoreName)
	}
	if input.StoreAddress != nil {
		set["storeAddress"] = strings.TrimSpace(*input.StoreAddress)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		taken, err := s.users.DocumentExists(ctx, bson.M{"email": email, "_id": bson.M{"$ne": id}})
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.NewConflictError("Email is already in use")
		}
		set["email"] = email
	}

	if len(set) == 0 {
		return s.GetProfile(ctx, id)
	}

	updated, err := s.users.UpdateById(ctx, id, set)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, common.NewNotFoundError("User not found")
		case errors.Is(err, common.ErrDuplicate):
			return nil, common.NewConflictError("Email is already in use")
		}
		return nil, err
	}
	return &updated, nil
}

// UpdatePassword đổi mật khẩu sau khi kiểm tra mật khẩu hiện tại
func (s *UserService) UpdatePassword(ctx context.Context, id primitive.ObjectID, input *authdto.UpdatePasswordInput) error {
	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		return common.NewError(common.ErrCodeAuthCredentials, "Current password is incorrect", common.StatusUnauthorized, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), BcryptCost)
	if err != nil {
		return common.NewInternalError(err)
	}
	_, err = s.users.UpdateById(ctx, id, map[string]interface{}{"password": string(hash)})
	return err
}
