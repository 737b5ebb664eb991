package sessiondelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/pkg/errorspkg"
	"github.com/brigita/brigitabank/pkg/randompkg"
	"github.com/brigita/brigitabank/pkg/tokenpkg"
)

func TestRenewAccessToken(t *testing.T) {
	symmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	type requestBody struct {
		RefreshToken string `json:"refresh_token"`
	}

	username := randompkg.Owner()
	duration := time.Minute

	token, payload, err := tokenMaker.CreateToken(username, duration)
	if err != nil {
		t.Fatalf("tokenMaker.CreateToken(%v, %v) returned error: %v", username, duration, err)
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		checkData      func(t *testing.T, got renewAccessTokenResponse)
	}{
		{
			name: "OK",
			requestBody: requestBody{
				RefreshToken: token,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					RenewAccessToken(gomock.Any(), token).
					Times(1).
					Return(token, payload.ExpiredAt, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(t *testing.T, got renewAccessTokenResponse) {
				t.Helper()

				if got.AccessToken != token {
					t.Errorf("got.AccessToken = %q, want %q", got.AccessToken, token)
				}

				if !got.AccessTokenExpiresAt.Equal(payload.ExpiredAt) {
					t.Errorf("got.AccessTokenExpiresAt = %v, want %v",
						got.AccessTokenExpiresAt, payload.ExpiredAt)
				}
			},
		},
		{
			name: "RequiredRefreshToken",
			requestBody: requestBody{
				RefreshToken: "",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "ExpiredRefreshToken",
			requestBody: requestBody{
				RefreshToken: token,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					RenewAccessToken(gomock.Any(), token).
					Times(1).
					Return("", time.Time{}, tokenpkg.ErrExpiredToken)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "SessionNotFound",
			requestBody: requestBody{
				RefreshToken: token,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					RenewAccessToken(gomock.Any(), token).
					Times(1).
					Return("", time.Time{}, domain.ErrSessionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "InternalServiceError",
			requestBody: requestBody{
				RefreshToken: token,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					RenewAccessToken(gomock.Any(), token).
					Times(1).
					Return("", time.Now(), errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			sessionService := NewMockService(ctrl)
			sessionHandler := NewHandler(sessionService)

			gin.SetMode(gin.ReleaseMode)
			server := gin.New()
			url := "/sessions"

			server.POST(url, sessionHandler.RenewAccessToken)

			tc.buildStubs(sessionService)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if got := w.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.wantStatusCode == http.StatusOK {
				var res renewAccessTokenResponse
				if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
					t.Errorf("Decoding response body error: %v", err)
				}

				tc.checkData(t, res)
			}
		})
	}
}
