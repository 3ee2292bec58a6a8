package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/spf13/cobra"
)

// userView is what the CLI prints about an identity. Secrets are left out.
type userView struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	GoogleSub  string     `json:"google_sub,omitempty"`
	Verified   bool       `json:"verified"`
	HasPass    bool       `json:"has_password"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	TokenUntil *time.Time `json:"verification_expires,omitempty"`
}

func newUserView(u *models.User) userView {
	v := userView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		GoogleSub: u.GoogleID,
		Verified:  u.IsVerified,
		HasPass:   u.PasswordHash != "",
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.VerificationToken != "" {
		until := u.VerificationExpires
		v.TokenUntil = &until
	}
	return v
}

func (v userView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "id:        %s\n", v.ID)
	fmt.Fprintf(&b, "email:     %s\n", v.Email)
	fmt.Fprintf(&b, "name:      %s\n", v.Name)
	if v.GoogleSub != "" {
		fmt.Fprintf(&b, "google:    %s\n", v.GoogleSub)
	}
	fmt.Fprintf(&b, "verified:  %t\n", v.Verified)
	fmt.Fprintf(&b, "password:  %t\n", v.HasPass)
	fmt.Fprintf(&b, "created:   %s", v.CreatedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// NewUsersCommand groups identity inspection and repair.
func NewUsersCommand(opts *RootOptions, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and repair stored identities",
	}

	cmd.AddCommand(newUsersShowCommand(opts, deps))
	cmd.AddCommand(newUsersVerifyCommand(opts, deps))

	return cmd
}

func newUsersShowCommand(opts *RootOptions, deps Deps) *cobra.Command {
	var email, sub string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one identity by email or Google subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, deps)
			if err != nil {
				return err
			}
			defer s.Close()

			repo := s.rm.Users(s.db)
			var u *models.User
			if email != "" {
				u, err = repo.GetByEmail(cmd.Context(), email)
			} else {
				u, err = repo.GetByFederatedSubject(cmd.Context(), sub)
			}
			if err != nil {
				return fmt.Errorf("lookup user: %w", err)
			}

			v := newUserView(u)
			return printResult(cmd, opts, v, v.String())
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&sub, "google-sub", "", "Google account subject")
	cmd.MarkFlagsMutuallyExclusive("email", "google-sub")
	cmd.MarkFlagsOneRequired("email", "google-sub")

	return cmd
}

// newUsersVerifyCommand marks an identity verified without its token, for
// users whose verification email never arrived.
func newUsersVerifyCommand(opts *RootOptions, deps Deps) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Mark an identity as verified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, deps)
			if err != nil {
				return err
			}
			defer s.Close()

			repo := s.rm.Users(s.db)
			u, err := repo.GetByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("lookup user: %w", err)
			}

			if u.IsVerified {
				return printResult(cmd, opts, map[string]any{"id": u.ID, "verified": true, "changed": false},
					fmt.Sprintf("%s is already verified", u.Email))
			}

			if err := repo.SetVerified(cmd.Context(), u.ID, deps.Now()); err != nil {
				return fmt.Errorf("verify user: %w", err)
			}
			return printResult(cmd, opts, map[string]any{"id": u.ID, "verified": true, "changed": true},
				fmt.Sprintf("%s verified", u.Email))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
