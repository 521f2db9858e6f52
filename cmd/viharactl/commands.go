// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"encoding/base64"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/model"
	"github.com/viharasite/vihara-go/internal/session"
)

// requireSession loads the stored session and refuses to proceed when
// the stored role fails the local policy check. The server enforces the
// same policy; failing early just saves a round trip.
func requireSession(c *client, check func(model.Role) bool, action string) (session.Session, error) {
	sess, err := c.sessions.Load()
	if err != nil {
		return session.Session{}, fmt.Errorf("not logged in; run: viharactl login")
	}
	if check != nil && !check(sess.User.Role) {
		return session.Session{}, fmt.Errorf("role %q may not %s", sess.User.Role, action)
	}
	return sess, nil
}

func cmdLogin(c *client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Admin email (required)")
	password := fs.String("password", "", "Password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	pw := *password
	if pw == "" {
		fmt.Print("Password: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		pw = strings.TrimRight(line, "\r\n")
	}

	var result struct {
		Token string         `json:"token"`
		User  model.AuthUser `json:"user"`
	}
	body := map[string]string{"email": *email, "password": pw}
	if err := c.do(http.MethodPost, "/api/login", body, false, &result); err != nil {
		return err
	}

	sess := session.Session{
		Token:     result.Token,
		User:      result.User,
		ExpiresAt: time.Now().Add(auth.TokenTTL),
	}
	if err := c.sessions.Set(sess); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s).\n", result.User.Email, result.User.Role)
	return nil
}

func cmdMe(c *client) error {
	if _, err := requireSession(c, nil, ""); err != nil {
		return err
	}

	var result struct {
		User model.AuthUser `json:"user"`
	}
	if err := c.do(http.MethodGet, "/api/me", nil, true, &result); err != nil {
		return err
	}
	return printJSON(result.User)
}

func cmdEvents(c *client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: viharactl events <list|get|create|update|delete> [options]")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		var items []model.EventItem
		if err := c.do(http.MethodGet, "/api/events", nil, false, &items); err != nil {
			return err
		}
		return printJSON(items)

	case "get":
		fs := flag.NewFlagSet("events get", flag.ExitOnError)
		id := fs.String("id", "", "Event id (required)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return fmt.Errorf("-id is required")
		}
		var item model.EventItem
		if err := c.do(http.MethodGet, "/api/events/"+url.PathEscape(*id), nil, false, &item); err != nil {
			return err
		}
		return printJSON(item)

	case "create":
		fs := flag.NewFlagSet("events create", flag.ExitOnError)
		title := fs.String("title", "", "Event title (required)")
		date := fs.String("date", "", "Event date, ISO format (required)")
		location := fs.String("location", "", "Event location (required)")
		description := fs.String("description", "", "Event description (markdown)")
		category := fs.String("category", "", "Category: pmv, gabi or general (required)")
		image := fs.String("image", "", "Image URL")
		if err := fs.Parse(rest); err != nil {
			return err
		}

		cat, ok := model.ParseCategory(*category)
		if !ok {
			return fmt.Errorf("-category must be one of: pmv, gabi, general")
		}
		if _, err := requireSession(c, func(r model.Role) bool {
			return auth.CanManage(r, cat)
		}, "create events in category "+string(cat)); err != nil {
			return err
		}

		body := map[string]string{
			"title":       *title,
			"date":        *date,
			"location":    *location,
			"description": *description,
			"category":    *category,
			"image":       *image,
		}
		var item model.EventItem
		if err := c.do(http.MethodPost, "/api/events", body, true, &item); err != nil {
			return err
		}
		return printJSON(item)

	case "update":
		fs := flag.NewFlagSet("events update", flag.ExitOnError)
		id := fs.String("id", "", "Event id (required)")
		title := fs.String("title", "", "New title")
		date := fs.String("date", "", "New date")
		location := fs.String("location", "", "New location")
		description := fs.String("description", "", "New description")
		category := fs.String("category", "", "New category")
		image := fs.String("image", "", "New image URL")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return fmt.Errorf("-id is required")
		}
		if _, err := requireSession(c, nil, ""); err != nil {
			return err
		}

		// Only flags that were set become part of the partial update.
		body := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "title":
				body["title"] = *title
			case "date":
				body["date"] = *date
			case "location":
				body["location"] = *location
			case "description":
				body["description"] = *description
			case "category":
				body["category"] = *category
			case "image":
				body["image"] = *image
			}
		})
		if len(body) == 0 {
			return fmt.Errorf("nothing to update; pass at least one field flag")
		}

		var item model.EventItem
		if err := c.do(http.MethodPut, "/api/events/"+url.PathEscape(*id), body, true, &item); err != nil {
			return err
		}
		return printJSON(item)

	case "delete":
		fs := flag.NewFlagSet("events delete", flag.ExitOnError)
		id := fs.String("id", "", "Event id (required)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return fmt.Errorf("-id is required")
		}
		if _, err := requireSession(c, nil, ""); err != nil {
			return err
		}
		if err := c.do(http.MethodDelete, "/api/events/"+url.PathEscape(*id), nil, true, nil); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil

	default:
		return fmt.Errorf("unknown events subcommand %q", sub)
	}
}

func cmdQuote(c *client, args []string) error {
	if len(args) == 0 {
		var quote model.QuoteItem
		if err := c.do(http.MethodGet, "/api/quotes", nil, false, &quote); err != nil {
			return err
		}
		return printJSON(quote)
	}

	if args[0] != "set" {
		return fmt.Errorf("usage: viharactl quote [set -text ... -source ...]")
	}

	fs := flag.NewFlagSet("quote set", flag.ExitOnError)
	text := fs.String("text", "", "Quote text (required)")
	source := fs.String("source", "", "Quote source (required)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if _, err := requireSession(c, auth.CanManageQuotes, "update the quote"); err != nil {
		return err
	}

	body := map[string]string{"text": *text, "source": *source}
	var quote model.QuoteItem
	if err := c.do(http.MethodPost, "/api/quotes", body, true, &quote); err != nil {
		return err
	}
	return printJSON(quote)
}

func cmdUpload(c *client, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "Path of the file to upload (required)")
	name := fs.String("name", "", "Stored filename (defaults to the file's base name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}
	if _, err := requireSession(c, nil, ""); err != nil {
		return err
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	filename := *name
	if filename == "" {
		filename = filepath.Base(*file)
	}

	body := map[string]string{
		"filename": filename,
		"content":  base64.StdEncoding.EncodeToString(content),
	}

	var result struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Width    int    `json:"width,omitempty"`
		Height   int    `json:"height,omitempty"`
	}
	if err := c.do(http.MethodPost, "/api/upload", body, true, &result); err != nil {
		return err
	}
	return printJSON(result)
}
