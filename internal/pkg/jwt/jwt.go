package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

// JWTService signs and verifies HS256 access tokens. Tokens are issued by
// the identity service in production; GenerateAccessToken exists for
// operators and tests.
type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     actor.UserID,
		"employee_id": returnValueOrNil(actor.EmployeeID),
		"role":        string(actor.Role),
		"type":        tokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ActorFromClaims builds the caller identity from verified access-token
// claims. employee_id may be absent for owners without an employee profile.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeAccess {
		return user.Actor{}, fmt.Errorf("unexpected token type %q", tokenType)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.Actor{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	role := user.Role(fmt.Sprint(claims["role"]))
	if !role.IsValid() {
		return user.Actor{}, user.ErrInvalidRole
	}

	employeeID, _ := claims["employee_id"].(string)

	return user.Actor{UserID: userID, EmployeeID: employeeID, Role: role}, nil
}

func returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
