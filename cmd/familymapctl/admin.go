// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/users"
	"github.com/tomtom215/familymap/internal/validation"
)

type createAdminOptions struct {
	username  string
	email     string
	password  string
	firstName string
	lastName  string
	noInput   bool
}

func (c *cli) createAdminCmd() *cobra.Command {
	var opts createAdminOptions

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a new admin user",
		Long: `Create a new admin user with the admin role and staff flags.

Missing values are prompted for unless --no-input is given. The password is
read without echo and must satisfy the password policy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.createAdmin(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.username, "username", "", "Username for the admin user")
	f.StringVar(&opts.email, "email", "", "Email address for the admin user")
	f.StringVar(&opts.password, "password", "", "Password for the admin user (prompted when omitted)")
	f.StringVar(&opts.firstName, "first-name", "", "First name for the admin user")
	f.StringVar(&opts.lastName, "last-name", "", "Last name for the admin user")
	f.BoolVar(&opts.noInput, "no-input", false, "Run without interactive prompts")
	return cmd
}

func (c *cli) createAdmin(cmd *cobra.Command, opts *createAdminOptions) error {
	if !opts.noInput {
		if err := c.promptAdmin(opts); err != nil {
			return err
		}
	}

	switch {
	case opts.username == "":
		return errors.New("Username is required") //nolint:staticcheck // user-facing message
	case opts.email == "":
		return errors.New("Email address is required") //nolint:staticcheck // user-facing message
	case opts.password == "":
		return errors.New("Password is required") //nolint:staticcheck // user-facing message
	}

	comps, err := c.components()
	if err != nil {
		return err
	}

	result, err := comps.Users.CreateAdminUser(cmd.Context(), &models.CreateAdminRequest{
		Username:  opts.username,
		Email:     opts.email,
		Password:  opts.password,
		FirstName: opts.firstName,
		LastName:  opts.lastName,
	})
	if err != nil {
		var policyErr *users.PasswordPolicyError
		var verr *validation.RequestValidationError
		switch {
		case errors.As(err, &policyErr):
			return policyErr
		case errors.As(err, &verr):
			return fmt.Errorf("invalid admin details: %w", verr)
		default:
			return err
		}
	}
	if !result.Success {
		return errors.New(result.Message)
	}

	fmt.Fprintf(c.out, "Success: %s\n", result.Message)
	fmt.Fprintf(c.out, "Admin user %q created with ID: %d\n", opts.username, result.User.ID)
	return nil
}

// promptAdmin fills in whatever the flags left empty.
func (c *cli) promptAdmin(opts *createAdminOptions) error {
	p := c.prompter()
	var err error

	if opts.username == "" {
		if opts.username, err = p.ask("Username: "); err != nil {
			return err
		}
	}
	if opts.email == "" {
		if opts.email, err = p.ask("Email address: "); err != nil {
			return err
		}
	}
	if opts.password == "" {
		password, err := c.readPassword("Password: ")
		if err != nil {
			return err
		}
		again, err := c.readPassword("Password (again): ")
		if err != nil {
			return err
		}
		if password != again {
			return errors.New("Passwords do not match") //nolint:staticcheck // user-facing message
		}
		opts.password = password
	}
	if opts.firstName == "" {
		yes, err := p.confirm("Do you want to add a first name? (y/n): ")
		if err != nil {
			return err
		}
		if yes {
			if opts.firstName, err = p.ask("First name: "); err != nil {
				return err
			}
		}
	}
	if opts.lastName == "" {
		yes, err := p.confirm("Do you want to add a last name? (y/n): ")
		if err != nil {
			return err
		}
		if yes {
			if opts.lastName, err = p.ask("Last name: "); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *cli) promoteAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote-admin <identifier>",
		Short: "Give the admin role to a user, by ID or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := c.components()
			if err != nil {
				return err
			}
			result, err := comps.Users.PromoteToAdmin(cmd.Context(), args[0])
			return c.reportRoleChange(result, err)
		},
	}
}

func (c *cli) demoteAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demote-admin <identifier>",
		Short: "Return an admin to a regular user, by ID or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := c.components()
			if err != nil {
				return err
			}
			result, err := comps.Users.DemoteFromAdmin(cmd.Context(), args[0])
			return c.reportRoleChange(result, err)
		},
	}
}

func (c *cli) reportRoleChange(result *models.UserResult, err error) error {
	if err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Message)
	}
	fmt.Fprintf(c.out, "Success: %s\n", result.Message)
	return nil
}

func (c *cli) listAdminsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-admins",
		Short: "List admin users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := c.components()
			if err != nil {
				return err
			}
			admins, err := comps.Users.ListAdmins(cmd.Context())
			if err != nil {
				return err
			}
			if len(admins) == 0 {
				fmt.Fprintln(c.out, "No admin users found.")
				return nil
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tACTIVE")
			for _, u := range admins {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.IsActive)
			}
			return tw.Flush()
		},
	}
}
