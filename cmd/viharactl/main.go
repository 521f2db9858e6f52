// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// viharactl is the admin command line for the community site API. It
// keeps a session context (token + user) in a local file and attaches
// it to every request.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/session"
	"github.com/viharasite/vihara-go/internal/version"
)

const defaultBaseURL = "http://localhost:8080"

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `viharactl - community site admin CLI

Usage: viharactl <command> [options]

Commands:
  login      Authenticate and store the session
  logout     Clear the stored session
  me         Show the current session user
  events     Manage events (list|get|create|update|delete)
  quote      Show or update the quote of the day
  upload     Upload a file to the content repository
  hash       Generate a password hash for VIHARA_ADMIN_USERS
  version    Show version information

Global options (before the command):
  -url <base>   API base URL (default %s, or VIHARA_API_URL)
`, defaultBaseURL)
}

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", "", "API base URL")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	url := *baseURL
	if url == "" {
		url = os.Getenv("VIHARA_API_URL")
	}
	if url == "" {
		url = defaultBaseURL
	}

	store, err := session.NewStore()
	if err != nil {
		fatal(err)
	}
	client := newClient(url, store)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		err = cmdLogin(client, rest)
	case "logout":
		err = client.sessions.Clear()
		if err == nil {
			fmt.Println("Session cleared.")
		}
	case "me":
		err = cmdMe(client)
	case "events":
		err = cmdEvents(client, rest)
	case "quote":
		err = cmdQuote(client, rest)
	case "upload":
		err = cmdUpload(client, rest)
	case "hash":
		err = cmdHash(rest)
	case "version":
		fmt.Printf("viharactl %s\n", version.Short())
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// cmdHash generates a password hash suitable for the admin directory.
func cmdHash(args []string) error {
	fs := flag.NewFlagSet("hash", flag.ExitOnError)
	password := fs.String("password", "", "Password to hash (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		return fmt.Errorf("-password is required")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
