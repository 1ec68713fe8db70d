package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"coopsite/internal/config"
	"coopsite/internal/repos"
	"coopsite/internal/services"
)

func usage() {
	fmt.Println("expected 'add-admin' or 'set-active' subcommand")
	os.Exit(1)
}

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	username := addAdminCmd.String("username", "", "Username for the new admin")
	password := addAdminCmd.String("password", "", "Password for the new admin")
	email := addAdminCmd.String("email", "", "Optional contact email")

	setActiveCmd := flag.NewFlagSet("set-active", flag.ExitOnError)
	target := setActiveCmd.String("username", "", "Admin to update")
	active := setActiveCmd.Bool("active", true, "Whether the admin may log in")

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		u, err := authService().CreateAdmin(context.Background(), *username, *password, *email)
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("Admin '%s' created successfully.\n", u.Username)
	case "set-active":
		setActiveCmd.Parse(os.Args[2:])
		if *target == "" {
			fmt.Println("username is required")
			setActiveCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := authService().SetActive(context.Background(), *target, *active); err != nil {
			log.Fatalf("Failed to update admin: %v", err)
		}
		fmt.Printf("Admin '%s' active=%v.\n", *target, *active)
	default:
		usage()
	}
}

// authService opens the same database the server uses, creating the
// schema if the CLI runs first.
func authService() *services.AuthService {
	cfg := config.Load()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return services.NewAuthService(repos.NewUserRepo(db), cfg.SessionTTL)
}
