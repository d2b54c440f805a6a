package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/password"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	services "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userUID, username, role string) (string, error) {
	args := m.Called(userUID, username, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) GenerateRefreshToken(userUID, username, role string) (string, error) {
	args := m.Called(userUID, username, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseRefreshToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func notFound() error {
	return fmt.Errorf("storage.GetUserByEmail: %w", repository.ErrUserNotFound)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *UserRepoMock)
		wantUID    string
		wantErr    error
		errMsg     string
	}{
		{
			name: "successful registration assigns user role",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					_, uuidErr := uuid.Parse(user.UUID)
					return uuidErr == nil &&
						user.Email == "test@example.com" &&
						user.Username == "testuser" &&
						user.PasswordHash != "" &&
						user.PasswordHash != "password123" &&
						user.Role == models.RoleUser
				})).Return("some-uuid-string", nil).Once()
			},
			wantUID: "some-uuid-string",
		},
		{
			name: "duplicate user",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).
					Return("", fmt.Errorf("storage.RegisterUser: %w", repository.ErrUserExists)).Once()
			},
			wantErr: services.ErrUserExists,
		},
		{
			name: "repository error",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", errors.New("db error")).Once()
			},
			errMsg: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := services.NewAuthService(repo, new(JwtMakerMock))
			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), "test@example.com", "testuser", "password123")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.ErrorContains(t, err, tt.errMsg)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUID, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	testUser := &models.User{
		UUID:         "uid-1",
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantAccess string
		wantErr    error
		errMsg     string
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "uid-1", "testuser", "admin").Return("jwt-token-123", nil).Once()
				j.On("GenerateRefreshToken", "uid-1", "testuser", "admin").Return("refresh-123", nil).Once()
			},
			wantAccess: "jwt-token-123",
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, notFound()).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "token generation error",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "uid-1", "testuser", "admin").Return("", errors.New("token error")).Once()
			},
			errMsg: "token error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, jwtMock)
			tt.setupMocks(repo, jwtMock)

			session, err := svc.Login(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
			case tt.errMsg != "":
				assert.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantAccess, session.Access)
				assert.Equal(t, "refresh-123", session.Refresh)
				assert.Equal(t, testUser, session.User)
			}
			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	tests := []struct {
		name      string
		claims    *customjwt.CustomClaims
		parseErr  error
		wantActor models.Actor
		wantErr   bool
	}{
		{
			name:      "valid token",
			claims:    &customjwt.CustomClaims{UserUID: "uid-1", Username: "testuser", Role: "user"},
			wantActor: models.Actor{ID: "uid-1", Username: "testuser", Role: models.RoleUser},
		},
		{
			name:      "admin token",
			claims:    &customjwt.CustomClaims{UserUID: "uid-2", Username: "root", Role: "admin"},
			wantActor: models.Actor{ID: "uid-2", Username: "root", Role: models.RoleAdmin},
		},
		{
			name:    "unknown role",
			claims:  &customjwt.CustomClaims{UserUID: "uid-3", Username: "x", Role: "superuser"},
			wantErr: true,
		},
		{
			name:     "invalid token",
			parseErr: customjwt.ErrInvalidToken,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(new(UserRepoMock), jwtMock)
			if tt.parseErr != nil {
				jwtMock.On("ParseToken", "token").Return(nil, tt.parseErr).Once()
			} else {
				jwtMock.On("ParseToken", "token").Return(tt.claims, nil).Once()
			}

			actor, err := svc.ValidateToken(context.Background(), "token")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, models.Actor{}, actor)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantActor, actor)
			}
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Run("creates admin when missing", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := services.NewAuthService(repo, new(JwtMakerMock))
		repo.On("GetUserByEmail", mock.Anything, "admin@sm.com").Return(nil, notFound()).Once()
		repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleAdmin && u.Email == "admin@sm.com" && u.Username == "admin"
		})).Return("admin-uid", nil).Once()

		created, err := svc.EnsureAdmin(context.Background(), "admin@sm.com", "admin", "secret")
		require.NoError(t, err)
		assert.True(t, created)
		repo.AssertExpectations(t)
	})

	t.Run("existing account is left alone", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := services.NewAuthService(repo, new(JwtMakerMock))
		repo.On("GetUserByEmail", mock.Anything, "admin@sm.com").
			Return(&models.User{Email: "admin@sm.com", Role: models.RoleAdmin}, nil).Once()

		created, err := svc.EnsureAdmin(context.Background(), "admin@sm.com", "admin", "secret")
		require.NoError(t, err)
		assert.False(t, created)
		repo.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := services.NewAuthService(repo, new(JwtMakerMock))
		repo.On("GetUserByEmail", mock.Anything, "admin@sm.com").Return(nil, errors.New("db down")).Once()

		_, err := svc.EnsureAdmin(context.Background(), "admin@sm.com", "admin", "secret")
		assert.ErrorContains(t, err, "services.EnsureAdmin")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	user := &models.User{UUID: "uid-1", Email: "a@example.com", Username: "alice", Role: models.RoleAdmin}
	claims := &customjwt.CustomClaims{UserUID: "uid-1", Username: "alice", Role: "user", TokenType: customjwt.TokenTypeRefresh}

	tests := []struct {
		name       string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantErr    error
		errMsg     string
	}{
		{
			name: "new pair carries current role",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseRefreshToken", "refresh").Return(claims, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-1").Return(user, nil).Once()
				j.On("GenerateToken", "uid-1", "alice", "admin").Return("access-2", nil).Once()
				j.On("GenerateRefreshToken", "uid-1", "alice", "admin").Return("refresh-2", nil).Once()
			},
		},
		{
			name: "invalid refresh token",
			setupMocks: func(_ *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseRefreshToken", "refresh").Return(nil, customjwt.ErrInvalidToken).Once()
			},
			wantErr: services.ErrInvalidToken,
		},
		{
			name: "deleted user",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseRefreshToken", "refresh").Return(claims, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-1").
					Return(nil, fmt.Errorf("storage.GetUserByUID: %w", repository.ErrUserNotFound)).Once()
			},
			wantErr: services.ErrInvalidToken,
		},
		{
			name: "repository error",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseRefreshToken", "refresh").Return(claims, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-1").Return(nil, errors.New("db down")).Once()
			},
			errMsg: "services.Refresh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, jwtMock)
			tt.setupMocks(repo, jwtMock)

			session, err := svc.Refresh(context.Background(), "refresh")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "access-2", session.Access)
				assert.Equal(t, "refresh-2", session.Refresh)
				assert.Equal(t, user, session.User)
			}
			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ListUsers(t *testing.T) {
	users := []*models.User{
		{UUID: "uid-1", Username: "admin", Role: models.RoleAdmin},
		{UUID: "uid-2", Username: "alice"},
	}

	t.Run("admin sees all users", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("ListUsers", mock.Anything).Return(users, nil).Once()
		svc := services.NewAuthService(repo, new(JwtMakerMock))

		got, err := svc.ListUsers(context.Background(), models.Actor{ID: "uid-1", Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, users, got)
		repo.AssertExpectations(t)
	})

	t.Run("user is denied", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := services.NewAuthService(repo, new(JwtMakerMock))

		_, err := svc.ListUsers(context.Background(), models.Actor{ID: "uid-2", Role: models.RoleUser})
		assert.ErrorIs(t, err, services.ErrPermissionDenied)
		repo.AssertNotCalled(t, "ListUsers", mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("ListUsers", mock.Anything).Return(nil, errors.New("db down")).Once()
		svc := services.NewAuthService(repo, new(JwtMakerMock))

		_, err := svc.ListUsers(context.Background(), models.Actor{Role: models.RoleAdmin})
		assert.ErrorContains(t, err, "services.ListUsers")
	})
}
