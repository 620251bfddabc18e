package echoapi

import (
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

const (
	tokenContextKey = "userToken"
	tokenAudience   = "Dossiers"

	// RoleAdmin may delete students.
	RoleAdmin = "admin"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name  string   `json:"name,omitempty"` // display name, written to the document history
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// NewClaims returns the claims of a user identified by subject, valid for conf.Server.JWTExpirationDelta.
func NewClaims(conf *core.Config, subject, name, email string, roles ...string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  name,
		Email: email,
		Roles: roles,
	}
}

func (c Claims) HasRole(role string) bool {
	roles := append([]string(nil), c.Roles...)
	sort.Strings(roles)
	i := sort.SearchStrings(roles, role)
	return i < len(roles) && roles[i] == role
}

// Actor is the user the claims identify.
func (c Claims) Actor() document.Actor {
	name := c.Name
	if name == "" {
		name = c.Subject
	}
	return document.Actor{ID: c.Subject, Name: name, Email: c.Email}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtConf := newJWTConfig(conf)
	method := jwt.GetSigningMethod(jwtConf.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextActor returns the authenticated actor, or the zero Actor for anonymous requests.
func contextActor(ctx echo.Context) document.Actor {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return document.Actor{}
	}
	return claims.Actor()
}
