// Command token prints an access token for local testing and operator
// scripts. Login itself is handled by the identity service.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	var (
		userID     = flag.String("user", "", "user id (required)")
		employeeID = flag.String("employee", "", "employee id, empty for users without an employee profile")
		role       = flag.String("role", string(user.RoleEmployee), "owner, manager or employee")
		expiration = flag.String("exp", "", "token lifetime, defaults to JWT_ACCESS_EXPIRATION_TIME or 1h")
	)
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	actor := user.Actor{UserID: *userID, EmployeeID: *employeeID, Role: user.Role(*role)}
	if !actor.Role.IsValid() {
		log.Fatalf("unknown role %q", *role)
	}

	exp := *expiration
	if exp == "" {
		exp = os.Getenv("JWT_ACCESS_EXPIRATION_TIME")
	}
	if exp == "" {
		exp = "1h"
	}

	token, expiresAt, err := jwt.NewJWTService(secret, exp).GenerateAccessToken(actor)
	if err != nil {
		log.Fatal("failed to sign token: ", err)
	}

	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
	fmt.Println(token)
}
