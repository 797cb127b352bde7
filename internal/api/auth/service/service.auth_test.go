package authsvc

import (
	"context"
	"os"
	"testing"
	"time"

	authdto "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/dto"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	os.Setenv("LOG_OUTPUT", "stdout")
	os.Exit(m.Run())
}

func newTestService() (*UserService, *TokenService, *fakeUserStore) {
	cache := utility.NewCache(time.Hour, 0)
	tokens := NewTokenService("test-secret", time.Hour, NewMemoryTokenRevoker(cache))
	store := newFakeUserStore()
	return NewUserService(store, tokens), tokens, store
}

func signUp(t *testing.T, svc *UserService, email string) {
	t.Helper()
	_, err := svc.SignUp(context.Background(), &authdto.SignUpInput{
		Name:     "Fresh Mart",
		Email:    email,
		Password: "Secret#123",
	})
	require.NoError(t, err)
}

func TestSignUp_HashesPasswordAndLowercasesEmail(t *testing.T) {
	svc, _, store := newTestService()

	user, err := svc.SignUp(context.Background(), &authdto.SignUpInput{
		Name:     "Fresh Mart",
		Email:    "  Owner@Shop.COM ",
		Password: "Secret#123",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.com", user.Email)
	assert.NotEqual(t, "Secret#123", store.users[user.ID].Password)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	signUp(t, svc, "owner@shop.com")

	_, err := svc.SignUp(context.Background(), &authdto.SignUpInput{
		Name:     "Other",
		Email:    "OWNER@shop.com",
		Password: "Secret#123",
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusConflict, common.StatusOf(err))
}

func TestSignIn(t *testing.T) {
	svc, tokens, _ := newTestService()
	signUp(t, svc, "owner@shop.com")
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, &authdto.SignInInput{Email: "nobody@shop.com", Password: "x"})
		assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, &authdto.SignInInput{Email: "owner@shop.com", Password: "Wrong#123"})
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		result, err := svc.SignIn(ctx, &authdto.SignInInput{Email: "Owner@shop.com", Password: "Secret#123"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)

		userID, err := tokens.VerifyToken(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID.Hex(), userID)
	})
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc, tokens, _ := newTestService()
	signUp(t, svc, "owner@shop.com")
	ctx := context.Background()

	result, err := svc.SignIn(ctx, &authdto.SignInInput{Email: "owner@shop.com", Password: "Secret#123"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, result.Token))
	_, err = tokens.VerifyToken(ctx, result.Token)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)

	// token rác bị bỏ qua
	assert.NoError(t, svc.SignOut(ctx, "not-a-jwt"))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService()
	signUp(t, svc, "owner@shop.com")
	signUp(t, svc, "taken@shop.com")
	ctx := context.Background()

	result, err := svc.SignIn(ctx, &authdto.SignInInput{Email: "owner@shop.com", Password: "Secret#123"})
	require.NoError(t, err)
	id := result.User.ID

	storeName := "Green Grocer"
	updated, err := svc.UpdateProfile(ctx, id, &authdto.UpdateProfileInput{StoreName: &storeName})
	require.NoError(t, err)
	assert.Equal(t, "Green Grocer", updated.StoreName)

	taken := "Taken@Shop.com"
	_, err = svc.UpdateProfile(ctx, id, &authdto.UpdateProfileInput{Email: &taken})
	assert.Equal(t, common.StatusConflict, common.StatusOf(err))

	_, err = svc.UpdateProfile(ctx, primitive.NewObjectID(), &authdto.UpdateProfileInput{StoreName: &storeName})
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}

func TestUpdatePassword(t *testing.T) {
	svc, _, _ := newTestService()
	signUp(t, svc, "owner@shop.com")
	ctx := context.Background()

	result, err := svc.SignIn(ctx, &authdto.SignInInput{Email: "owner@shop.com", Password: "Secret#123"})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, result.User.ID, &authdto.UpdatePasswordInput{CurrentPassword: "nope", NewPassword: "Fresh#4567"})
	assert.Equal(t, common.StatusUnauthorized, common.StatusOf(err))

	require.NoError(t, svc.UpdatePassword(ctx, result.User.ID, &authdto.UpdatePasswordInput{CurrentPassword: "Secret#123", NewPassword: "Fresh#4567"}))
	_, err = svc.SignIn(ctx, &authdto.SignInInput{Email: "owner@shop.com", Password: "Fresh#4567"})
	assert.NoError(t, err)
}

func TestTokenService_Parse(t *testing.T) {
	tokens := NewTokenService("secret-a", time.Hour, nil)
	token, claims, err := tokens.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", parsed.UserID)

	other := NewTokenService("secret-b", time.Hour, nil)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)

	expired := NewTokenService("secret-a", time.Hour, nil)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}
