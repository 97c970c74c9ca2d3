package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/erpinterno/erpadmin/erp"
	"github.com/erpinterno/erpadmin/loginflow"
	"github.com/erpinterno/erpadmin/session"
)

func loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the ERP API and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(configFrom(cmd.Context()))
			if err != nil {
				return err
			}

			if email == "" {
				email, err = promptLine("Email: ")
				if err != nil {
					return err
				}
			}
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			if err := loginflow.ValidateInput(email, password); err != nil {
				return err
			}

			if _, err := c.session.Login(cmd.Context(), email, password); err != nil {
				return errors.Wrap(err, "login")
			}
			profile, err := c.session.FetchCurrentProfile(cmd.Context())
			if err != nil {
				// Logged in regardless; the profile can be fetched later.
				log.Warn().Err(err).Msg("profile fetch failed, session kept")
				fmt.Println("Sesión iniciada (perfil no disponible)")
				return nil
			}
			fmt.Printf("Sesión iniciada como %s (%s)\n", profile.Email, profile.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(configFrom(cmd.Context()))
			if err != nil {
				return err
			}
			c.session.Logout()
			fmt.Println("Sesión cerrada")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(configFrom(cmd.Context()))
			if err != nil {
				return err
			}
			status, profile := c.session.Snapshot()
			switch status {
			case session.StatusAuthenticated:
				fmt.Printf("%s (%s)\n", profile.Email, profile.Role)
			case session.StatusAuthenticatedPending:
				fmt.Println("autenticado, perfil no cargado")
			default:
				fmt.Println("no autenticado")
			}
			return nil
		},
	}
}

func lsCmd() *cobra.Command {
	var limit int
	var search string

	cmd := &cobra.Command{
		Use:   "ls <resource>",
		Short: "List a resource (bancos, categorias, proveedores, empresas, formas-pago, integraciones)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildComponents(configFrom(cmd.Context()))
			if err != nil {
				return err
			}
			params := erp.ListParams{Limit: limit, Search: search}
			ctx := cmd.Context()

			switch args[0] {
			case "bancos":
				page, err := c.erp.Bancos().List(ctx, params)
				if err != nil {
					return err
				}
				for _, b := range page.Items {
					fmt.Printf("%d\t%s\t%s\n", b.ID, b.Nombre, b.Cuenta)
				}
			case "categorias":
				page, err := c.erp.Categorias().List(ctx, params)
				if err != nil {
					return err
				}
				for _, cat := range page.Items {
					fmt.Printf("%d\t%s\t%s\n", cat.ID, cat.Nombre, cat.Tipo)
				}
			case "proveedores":
				page, err := c.erp.Proveedores().List(ctx, params)
				if err != nil {
					return err
				}
				for _, p := range page.Items {
					fmt.Printf("%d\t%s\t%s\n", p.ID, p.Nombre, p.CIF)
				}
			case "empresas":
				page, err := c.erp.Empresas().List(ctx, params)
				if err != nil {
					return err
				}
				for _, e := range page.Items {
					fmt.Printf("%d\t%s\t%s\n", e.ID, e.Nombre, e.CIF)
				}
			case "formas-pago":
				page, err := c.erp.FormasPago().List(ctx, params)
				if err != nil {
					return err
				}
				for _, f := range page.Items {
					fmt.Printf("%d\t%s\n", f.ID, f.Nombre)
				}
			case "integraciones":
				page, err := c.erp.Integraciones().List(ctx, params)
				if err != nil {
					return err
				}
				for _, i := range page.Items {
					fmt.Printf("%d\t%s\t%s\t%s\n", i.ID, i.Nombre, i.Tipo, i.Estado)
				}
			default:
				return errors.Errorf("unknown resource %q", args[0])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum items to list")
	cmd.Flags().StringVar(&search, "search", "", "filter by search term")
	return cmd
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", errors.Wrap(err, "read password")
		}
		return string(b), nil
	}
	return promptLine("")
}
