package main

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/repository"
	"fertigation.io/farmwatch/internal/usecase"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type fixtures struct {
	Farms []farmFixture `yaml:"farms"`
	Admin adminFixture  `yaml:"admin"`
}

type farmFixture struct {
	Name     string          `yaml:"name"`
	Location string          `yaml:"location"`
	CropType string          `yaml:"crop_type"`
	Sensors  []sensorFixture `yaml:"sensors"`
}

type sensorFixture struct {
	ID           string `yaml:"id"`
	Type         string `yaml:"type"`
	SerialNumber string `yaml:"serial_number"`
}

type adminFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func parseFixtures(data []byte) (fixtures, error) {
	var fx fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	seen := map[string]bool{}
	for _, f := range fx.Farms {
		if strings.TrimSpace(f.Name) == "" {
			return fixtures{}, errors.New("parse fixtures: farm without a name")
		}
		for _, s := range f.Sensors {
			if s.ID == "" {
				return fixtures{}, fmt.Errorf("parse fixtures: farm %q has a sensor without an id", f.Name)
			}
			if seen[s.ID] {
				return fixtures{}, fmt.Errorf("parse fixtures: sensor %s listed twice", s.ID)
			}
			seen[s.ID] = true
		}
	}
	return fx, nil
}

// seedResult counts what a seed run touched.
type seedResult struct {
	Farms   int
	Sensors int
	// AdminPassword is set only when a new admin was created with a
	// generated password.
	AdminPassword string
	AdminCreated  bool
}

// seed upserts farms and sensors and creates the admin profile if its email
// is not registered yet.
func seed(ctx context.Context, store *repository.Store, fx fixtures, bcryptCost int) (seedResult, error) {
	var res seedResult
	for _, f := range fx.Farms {
		farm, err := store.Farms.Upsert(ctx, domain.NewFarm{Name: f.Name, Location: f.Location, CropType: f.CropType})
		if err != nil {
			return res, fmt.Errorf("seed farm %q: %w", f.Name, err)
		}
		res.Farms++
		for _, s := range f.Sensors {
			err := store.Sensors.Upsert(ctx, domain.Sensor{ID: s.ID, FarmID: farm.ID, Type: s.Type, SerialNumber: s.SerialNumber})
			if err != nil {
				return res, fmt.Errorf("seed sensor %s: %w", s.ID, err)
			}
			res.Sensors++
		}
		logger.Info("Seeded farm", zap.String("farm", farm.Name), zap.Int("sensors", len(f.Sensors)))
	}

	if fx.Admin.Email == "" {
		return res, nil
	}
	_, err := store.Profiles.CredentialsByEmail(ctx, fx.Admin.Email)
	switch {
	case err == nil:
		logger.Info("Admin profile already exists, skipping", zap.String("email", fx.Admin.Email))
		return res, nil
	case !apperrors.IsNotFound(err):
		return res, fmt.Errorf("look up admin: %w", err)
	}

	password := fx.Admin.Password
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return res, err
		}
		res.AdminPassword = password
	}
	hash, err := usecase.HashPassword(password, bcryptCost)
	if err != nil {
		return res, fmt.Errorf("hash admin password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return res, fmt.Errorf("generate admin id: %w", err)
	}
	name := fx.Admin.Name
	if name == "" {
		name = "Administrator"
	}
	if _, err := store.Profiles.Create(ctx, domain.NewProfile{
		ID:           id.String(),
		Name:         name,
		Email:        fx.Admin.Email,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	}); err != nil {
		return res, fmt.Errorf("create admin: %w", err)
	}
	res.AdminCreated = true
	logger.Info("Seeded admin profile", zap.String("email", fx.Admin.Email))
	return res, nil
}

func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate admin password: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func printSeedResult(w io.Writer, res seedResult, email string) {
	fmt.Fprintf(w, "seeded %d farms and %d sensors\n", res.Farms, res.Sensors)
	if res.AdminCreated {
		fmt.Fprintf(w, "created admin %s\n", email)
	}
	if res.AdminPassword != "" {
		fmt.Fprintf(w, "generated admin password: %s (shown once)\n", res.AdminPassword)
	}
}

func (c *cli) seedCmd() *cobra.Command {
	var fixturesPath, adminPassword string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo farms, sensors and an admin profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := defaultFixtures
			if fixturesPath != "" {
				var err error
				if data, err = os.ReadFile(fixturesPath); err != nil {
					return fmt.Errorf("read fixtures: %w", err)
				}
			}
			fx, err := parseFixtures(data)
			if err != nil {
				return err
			}
			if adminPassword != "" {
				fx.Admin.Password = adminPassword
			}

			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := seed(cmd.Context(), db.Store, fx, c.cfg.Security.BcryptCost)
			if err != nil {
				return err
			}
			printSeedResult(cmd.OutOrStdout(), res, fx.Admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&fixturesPath, "file", "f", "", "fixtures YAML (defaults to the built-in demo set)")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password for a newly created admin (generated when empty)")
	return cmd
}
