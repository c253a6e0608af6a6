package handler

import (
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/eventful-services/common/jwt"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/services/checkout-lambda/models"
)

// SessionStore keeps the checkout session in a signed cookie.
type SessionStore struct {
	signer     *jwt.Signer
	cookieName string
	secure     bool
}

func NewSessionStore(signer *jwt.Signer, cookieName string, secure bool) *SessionStore {
	if cookieName == "" {
		cookieName = "eventful_session"
	}
	return &SessionStore{signer: signer, cookieName: cookieName, secure: secure}
}

// Load reads the session snapshot from the request. A missing, tampered or
// expired cookie yields an empty snapshot with a new id.
func (st *SessionStore) Load(request events.APIGatewayProxyRequest) models.SessionState {
	state := models.SessionState{Phase: models.PhaseBrowse}

	if token := st.cookieValue(request); token != "" {
		claims, err := st.signer.Parse(token)
		if err != nil {
			logger.WithError(err).Debug("Discarding session cookie")
		} else {
			state = models.SessionState{
				ID:         claims.ID,
				Phase:      models.Phase(claims.Phase),
				EventID:    claims.EventID,
				Quantities: claims.Quantities,
				PaymentRef: claims.PaymentRef,
				Notice:     claims.Notice,
			}
		}
	}

	if state.ID == "" {
		state.ID = uuid.NewString()
	}
	return state
}

// Cookie signs state into a Set-Cookie value.
func (st *SessionStore) Cookie(state models.SessionState) (*http.Cookie, error) {
	claims := jwt.SessionClaims{
		Phase:      string(state.Phase),
		EventID:    state.EventID,
		Quantities: state.Quantities,
		PaymentRef: state.PaymentRef,
		Notice:     state.Notice,
	}
	claims.ID = state.ID

	token, err := st.signer.Sign(claims)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     st.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(st.signer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (st *SessionStore) cookieValue(request events.APIGatewayProxyRequest) string {
	lines := request.MultiValueHeaders[headerKey(request.MultiValueHeaders, "Cookie")]
	if v := header(request.Headers, "Cookie"); v != "" {
		lines = append(lines, v)
	}
	for _, line := range lines {
		cookies, err := http.ParseCookie(line)
		if err != nil {
			continue
		}
		for _, c := range cookies {
			if c.Name == st.cookieName {
				return c.Value
			}
		}
	}
	return ""
}

// header looks a header up case-insensitively; API Gateway does not normalise names.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func headerKey(headers map[string][]string, name string) string {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}
