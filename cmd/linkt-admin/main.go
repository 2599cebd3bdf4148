// Command linkt-admin bootstraps an administrator account. Administrators
// cannot be created through registration, so the first one has to be
// provisioned directly against the database.
package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/linkt-app/linkt/internal/server/models"
	"github.com/linkt-app/linkt/internal/server/repositories/repomanager"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const minPasswordLength = 7

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func getPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt + ": ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func run() error {
	var (
		dsn       = flag.String("d", "", "PostgreSQL DSN")
		email     = flag.String("e", "", "administrator email")
		firstName = flag.String("f", "Admin", "first name")
		lastName  = flag.String("l", "", "last name")
	)
	flag.Parse()

	if *dsn == "" || *email == "" {
		flag.Usage()
		return fmt.Errorf("both -d and -e are required")
	}

	password, err := getPassword("Enter password")
	if err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	confirm, err := getPassword("Repeat password")
	if err != nil {
		return err
	}
	if !bytes.Equal(password, confirm) {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return err
	}

	repo := rm.Users(db)
	exists, err := repo.ExistsByEmail(ctx, *email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("account %s already exists", *email)
	}

	user, err := repo.Create(ctx, &models.User{
		Email:         *email,
		FirstName:     *firstName,
		LastName:      *lastName,
		PasswordHash:  string(hash),
		Role:          models.RoleAdministrator,
		EmailVerified: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Administrator %s created (id %d)\n", user.Email, user.ID)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
