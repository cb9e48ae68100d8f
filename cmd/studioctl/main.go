// Command studioctl drives the studio API from the terminal: log in, pull a
// component into an editable YAML file, and push the edited file back through
// a conditional save with interactive conflict resolution.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"auren-studio/internal/client"
)

const defaultServer = "http://localhost:3000"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, os.Args[2:])
	case "pull":
		err = runPull(ctx, os.Args[2:])
	case "push":
		err = runPush(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "studioctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: studioctl <command> [flags]

commands:
  login   exchange email/password for a bearer token
  pull    fetch a component as YAML
  push    save a YAML file as a component, resolving conflicts interactively

Server and token default to the STUDIO_SERVER and STUDIO_TOKEN environment
variables.`)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newAPIClient(server, token string) *client.Client {
	var creds client.Credentials
	if token != "" {
		creds = client.StaticCredentials(token)
	}
	return client.NewClient(server, creds)
}

func runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	server := fs.String("server", envOr("STUDIO_SERVER", defaultServer), "studio server base URL")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	resp, err := newAPIClient(*server, "").Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "logged in as %s (%s)\n", *email, resp.Role)
	fmt.Println(resp.Token)
	return nil
}

func runPull(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	server := fs.String("server", envOr("STUDIO_SERVER", defaultServer), "studio server base URL")
	token := fs.String("token", os.Getenv("STUDIO_TOKEN"), "bearer token")
	projectID := fs.String("project", "", "project id")
	componentID := fs.String("component", "", "component id")
	output := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args)

	if *projectID == "" || *componentID == "" {
		return errors.New("pull requires -project and -component")
	}

	c := newAPIClient(*server, *token)
	component, version, err := c.GetComponent(ctx, *projectID, *componentID)
	if err != nil {
		return err
	}

	data, err := client.DraftFromComponent(component).ToYAML()
	if err != nil {
		return err
	}

	if *output == "" {
		os.Stdout.Write(data)
	} else if err := os.WriteFile(*output, data, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "pulled %s at version %s\n", component.ID, version)
	return nil
}

func runPush(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	server := fs.String("server", envOr("STUDIO_SERVER", defaultServer), "studio server base URL")
	token := fs.String("token", os.Getenv("STUDIO_TOKEN"), "bearer token")
	projectID := fs.String("project", "", "project id")
	componentID := fs.String("component", "", "component id (omit to create a new component)")
	file := fs.String("f", "", "YAML file to push")
	fs.Parse(args)

	if *projectID == "" || *file == "" {
		return errors.New("push requires -project and -f")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	draft, err := client.ParseDraftYAML(data)
	if err != nil {
		return err
	}

	c := newAPIClient(*server, *token)

	var session *client.Session
	if *componentID == "" {
		session = client.NewDraftSession(c, *projectID)
	} else {
		base, version, err := c.GetComponent(ctx, *projectID, *componentID)
		if err != nil {
			return err
		}
		session = client.NewSession(c, *projectID, base, version)
	}
	defer session.Close()
	session.SetDraft(draft)

	saved, err := session.Submit(ctx)
	if err == nil {
		fmt.Fprintf(os.Stderr, "saved %s at version %s\n", saved.ID, session.Token())
		return nil
	}
	if !client.IsConflict(err) {
		return err
	}

	return resolveInteractively(ctx, session, *file)
}

// resolveInteractively walks the user through a save conflict: show both
// sides, then overwrite, adopt the server's revision, or cancel.
func resolveInteractively(ctx context.Context, session *client.Session, file string) error {
	conflict := session.Conflict()
	if conflict == nil {
		return errors.New("conflict reported but no conflict state is available")
	}

	latestYAML, err := client.DraftFromComponent(conflict.Latest).ToYAML()
	if err != nil {
		return err
	}
	yourYAML, err := conflict.YourDraft.ToYAML()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "conflict: %s was modified by another user (now at version %s)\n\n", conflict.Latest.ID, conflict.LatestToken)
	fmt.Fprintf(os.Stderr, "--- latest on server ---\n%s\n--- your copy ---\n%s\n", latestYAML, yourYAML)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "[o]verwrite with your copy, [a]dopt latest, [c]ancel? ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "o":
			saved, err := session.Overwrite(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "overwrote %s at version %s\n", saved.ID, session.Token())
			return nil
		case "a":
			adopted, err := session.AdoptLatest()
			if err != nil {
				return err
			}
			data, err := adopted.ToYAML()
			if err != nil {
				return err
			}
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "adopted latest version %s into %s; re-edit and push again\n", session.Token(), file)
			return nil
		case "c":
			fmt.Fprintln(os.Stderr, "cancelled; nothing was saved")
			return nil
		}
	}
}
