package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/scribeworks/blog-backend/cmd/cli/config"
	"github.com/scribeworks/blog-backend/cmd/cli/root"
	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage users and authentication",
		Long: `Register or login a user to the Blog Backend API.
Stores JWT token locally for future commands.`,
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long:  "Register a new user with username and password.",
		RunE:  runRegister,
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login an existing user",
		Long:  "Login and save JWT token locally for future CLI commands.",
		RunE:  runLogin,
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout current user",
		Long:  "Remove locally saved JWT token.",
		RunE:  runLogout,
	}

	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
	root.GetRoot().AddCommand(authCmd)
}

// ==========================
// Register User
// ==========================
func runRegister(cmd *cobra.Command, args []string) error {
	username, password := promptCredentials()

	var out struct {
		Token string `json:"token"`
	}
	if err := postJSON("/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, &out); err != nil {
		return err
	}

	// Registration already hands back a token, so save it right away.
	if out.Token != "" {
		if err := config.SaveToken(out.Token); err != nil {
			return err
		}
	}

	fmt.Println("User registered successfully! JWT token saved locally.")
	return nil
}

// ==========================
// Login User
// ==========================
func runLogin(cmd *cobra.Command, args []string) error {
	username, password := promptCredentials()

	var out struct {
		Token string `json:"token"`
	}
	if err := postJSON("/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return fmt.Errorf("token not returned by API")
	}

	if err := config.SaveToken(out.Token); err != nil {
		return err
	}

	fmt.Println("Login successful! JWT token saved locally.")
	return nil
}

// ==========================
// Logout User
// ==========================
func runLogout(cmd *cobra.Command, args []string) error {
	if err := config.ClearToken(); err != nil {
		return err
	}
	fmt.Println("Logged out successfully.")
	return nil
}

func promptCredentials() (string, string) {
	var username, password string
	fmt.Print("Username: ")
	fmt.Scanln(&username)
	fmt.Print("Password: ")
	fmt.Scanln(&password)
	return username, password
}

func postJSON(path string, payload interface{}, out interface{}) error {
	body, _ := json.Marshal(payload)

	resp, err := http.Post(config.APIURL()+path, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: %s", string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return err
		}
	}
	return nil
}
