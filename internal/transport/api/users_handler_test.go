package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/logger"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/internal/service"
	"github.com/fsdevblog/splitledger/internal/transport/api/mocks"
	"github.com/fsdevblog/splitledger/internal/transport/api/testutils"
)

type UsersHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockUserService *mocks.MockUserServicer
}

func TestUsersHandlerSuite(t *testing.T) {
	suite.Run(t, new(UsersHandlerTestSuite))
}

func (s *UsersHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)

	router, err := New(RouterArgs{
		Logger:      logger.New(os.Stdout),
		UserService: s.mockUserService,
	})
	s.Require().NoError(err)
	s.router = router
}

func (s *UsersHandlerTestSuite) TestRoot() {
	res, err := testutils.MakeRequest(testutils.RequestArgs{Router: s.router, Method: http.MethodGet, URL: "/"})
	s.Require().NoError(err)
	defer res.Body.Close()

	s.Equal(http.StatusOK, res.StatusCode)
	var body MessageResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Equal("Split Ledger API", body.Message)
}

func (s *UsersHandlerTestSuite) TestCreate() {
	name, email := gofakeit.Name(), gofakeit.Email()
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	// Валидный запрос.
	s.mockUserService.EXPECT().
		Create(gomock.Any(), service.CreateUserArgs{Name: name, Email: email}).
		Return(&domain.User{ID: 1, Name: name, Email: email, CreatedAt: createdAt}, nil)
	// Email уже занят.
	s.mockUserService.EXPECT().
		Create(gomock.Any(), service.CreateUserArgs{Name: name, Email: "taken@example.com"}).
		Return(nil, domain.NewConflictError("email taken@example.com is already registered"))

	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{name: "ok", payload: `{"name":"` + name + `","email":"` + email + `"}`, wantStatus: http.StatusCreated},
		{name: "email taken", payload: `{"name":"` + name + `","email":"taken@example.com"}`, wantStatus: http.StatusConflict},
		{name: "missing name", payload: `{"email":"` + email + `"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad email", payload: `{"name":"x","email":"nope"}`, wantStatus: http.StatusUnprocessableEntity},
		{
			name:       "name too long",
			payload:    `{"name":"` + testutils.GenerateOverBytesUnderRunes(64) + `","email":"` + email + `"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{name: "malformed json", payload: `{"name":`, wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    UsersRoute,
				Body:   bytes.NewBufferString(t.payload),
			}, testutils.WithJSON())
			s.Require().NoError(err)
			defer res.Body.Close()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus == http.StatusCreated {
				var body UserResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal(int64(1), body.ID)
				s.Equal(email, body.Email)
				s.True(createdAt.Equal(body.CreatedAt))
				return
			}
			var body map[string]string
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
			s.NotEmpty(body["error"])
		})
	}
}

func (s *UsersHandlerTestSuite) TestIndexPagination() {
	s.mockUserService.EXPECT().
		List(gomock.Any(), repoargs.Page{Offset: 0, Limit: DefaultPageLimit}).
		Return([]domain.User{{ID: 1}, {ID: 2}}, nil)
	s.mockUserService.EXPECT().
		List(gomock.Any(), repoargs.Page{Offset: 5, Limit: MaxPageLimit}).
		Return([]domain.User{}, nil)

	cases := []struct {
		name    string
		url     string
		wantLen int
	}{
		{name: "defaults", url: UsersRoute, wantLen: 2},
		{name: "limit capped", url: UsersRoute + "?skip=5&limit=5000", wantLen: 0},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{Router: s.router, Method: http.MethodGet, URL: t.url})
			s.Require().NoError(err)
			defer res.Body.Close()

			s.Equal(http.StatusOK, res.StatusCode)
			var body []UserResponse
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
			s.Len(body, t.wantLen)
		})
	}
}

func (s *UsersHandlerTestSuite) TestShow() {
	s.mockUserService.EXPECT().Get(gomock.Any(), int64(3)).Return(&domain.User{ID: 3, Name: "Ann"}, nil)
	s.mockUserService.EXPECT().Get(gomock.Any(), int64(4)).Return(nil, domain.NewNotFoundError("user", 4))

	cases := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{name: "found", url: "/users/3", wantStatus: http.StatusOK},
		{name: "not found", url: "/users/4", wantStatus: http.StatusNotFound},
		{name: "bad id", url: "/users/abc", wantStatus: http.StatusBadRequest},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{Router: s.router, Method: http.MethodGet, URL: t.url})
			s.Require().NoError(err)
			defer res.Body.Close()
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *UsersHandlerTestSuite) TestUpdatePartial() {
	s.mockUserService.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, args service.UpdateUserArgs) (*domain.User, error) {
			s.Equal(int64(3), args.ID)
			s.Require().NotNil(args.Name)
			s.Equal("Anna", *args.Name)
			s.Nil(args.Email)
			return &domain.User{ID: 3, Name: "Anna", Email: "ann@example.com"}, nil
		})

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPut,
		URL:    "/users/3",
		Body:   bytes.NewBufferString(`{"name":"Anna"}`),
	}, testutils.WithJSON())
	s.Require().NoError(err)
	defer res.Body.Close()

	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *UsersHandlerTestSuite) TestDelete() {
	s.mockUserService.EXPECT().Delete(gomock.Any(), int64(3)).Return(nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{Router: s.router, Method: http.MethodDelete, URL: "/users/3"})
	s.Require().NoError(err)
	defer res.Body.Close()

	s.Equal(http.StatusOK, res.StatusCode)
	var body MessageResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Equal("User deleted successfully", body.Message)
}
