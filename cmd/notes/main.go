package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/splax/notes/internal/client"
	apiclient "github.com/splax/notes/pkg/api/client"
	"github.com/splax/notes/pkg/config"
)

var buildVersion = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "register":
		err = commandRegister(args)
	case "login":
		err = commandLogin(args)
	case "logout":
		err = commandLogout(args)
	case "whoami":
		err = commandWhoami()
	case "list":
		err = commandList(args)
	case "add":
		err = commandAdd(args)
	case "edit":
		err = commandEdit(args)
	case "rm":
		err = commandRemove(args)
	case "shell":
		err = commandShell()
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the client application and restores the saved session.
func newApp(apiOverride string) (*client.App, error) {
	cfg := config.LoadClientConfig()
	path := cfg.SessionPath
	if strings.TrimSpace(path) == "" {
		var err error
		path, err = client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}
	store := client.FileStore{Path: path}
	saved, err := store.Load()
	if err != nil {
		return nil, err
	}
	api, err := apiclient.New(resolveBaseURL(apiOverride, saved, cfg), apiclient.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, err
	}
	app := client.New(api, store, client.WithTimeout(cfg.RequestTimeout), client.WithBaseURL(api.BaseURL()))
	if err := app.Restore(); err != nil {
		return nil, err
	}
	return app, nil
}

// resolveBaseURL prefers the --api flag, then the server that issued the
// saved session, then NOTES_API_URL or the default.
func resolveBaseURL(override string, saved client.Session, cfg config.ClientConfig) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	if v := strings.TrimSpace(saved.APIBaseURL); v != "" {
		return v
	}
	return cfg.APIBaseURL
}

func authenticatedApp() (*client.App, error) {
	app, err := newApp("")
	if err != nil {
		return nil, err
	}
	if app.State() != client.Authenticated {
		return nil, errors.New("please login first using 'notes login'")
	}
	return app, nil
}

func readPassword(supplied string) (string, error) {
	if supplied != "" {
		return supplied, nil
	}
	fmt.Print("Password: ")
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}

func commandRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+config.DefaultAPIBaseURL+")")
	fs.Parse(args)

	if strings.TrimSpace(*name) == "" {
		return errors.New("--name is required")
	}
	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret, err := readPassword(*password)
	if err != nil {
		return err
	}
	app, err := newApp(*apiBase)
	if err != nil {
		return err
	}
	if err := app.Register(context.Background(), *name, *email, secret); err != nil {
		return err
	}
	user, _ := app.User()
	fmt.Printf("registered and logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+config.DefaultAPIBaseURL+")")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret, err := readPassword(*password)
	if err != nil {
		return err
	}
	app, err := newApp(*apiBase)
	if err != nil {
		return err
	}
	if err := app.Login(context.Background(), *email, secret); err != nil {
		return err
	}
	fmt.Printf("login successful (%d notes)\n", len(app.Notes()))
	return nil
}

func commandLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	revoke := fs.Bool("revoke", false, "Also ask the server to revoke the token")
	fs.Parse(args)

	app, err := newApp("")
	if err != nil {
		return err
	}
	if *revoke && app.State() == client.Authenticated {
		if err := app.RevokeSession(context.Background()); err != nil {
			return fmt.Errorf("logged out locally, revoke failed: %w", err)
		}
		fmt.Println("logged out and token revoked")
		return nil
	}
	if err := app.Logout(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func commandWhoami() error {
	app, err := newApp("")
	if err != nil {
		return err
	}
	user, ok := app.User()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> %s\n", user.Name, user.Email, user.ID)
	return nil
}

func commandList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "Only show notes whose title or content contains this text")
	fs.Parse(args)

	app, err := authenticatedApp()
	if err != nil {
		return err
	}
	if err := app.Refresh(context.Background()); err != nil {
		return err
	}
	app.SetFilter(*search)
	printNotes(os.Stdout, app.Visible())
	return nil
}

func commandAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "Note title")
	content := fs.String("content", "", "Note content")
	fs.Parse(args)

	app, err := authenticatedApp()
	if err != nil {
		return err
	}
	app.SetForm(*title, *content)
	if err := app.Save(context.Background()); err != nil {
		return err
	}
	fmt.Println("note created")
	return nil
}

func commandEdit(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "Note identifier")
	title := fs.String("title", "", "New title (keeps current when empty)")
	content := fs.String("content", "", "New content (keeps current when empty)")
	fs.Parse(args)

	if strings.TrimSpace(*id) == "" {
		return errors.New("--id is required")
	}
	app, err := authenticatedApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := app.Refresh(ctx); err != nil {
		return err
	}
	if err := app.StartEdit(*id); err != nil {
		return err
	}
	current := app.Form()
	newTitle, newContent := current.Title, current.Content
	if strings.TrimSpace(*title) != "" {
		newTitle = *title
	}
	if strings.TrimSpace(*content) != "" {
		newContent = *content
	}
	app.SetForm(newTitle, newContent)
	if err := app.Save(ctx); err != nil {
		return err
	}
	fmt.Println("note updated")
	return nil
}

func commandRemove(args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.String("id", "", "Note identifier")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	fs.Parse(args)

	if strings.TrimSpace(*id) == "" {
		return errors.New("--id is required")
	}
	if !*yes && !confirmDelete(bufio.NewScanner(os.Stdin), os.Stdout) {
		fmt.Println("delete cancelled")
		return nil
	}
	app, err := authenticatedApp()
	if err != nil {
		return err
	}
	if err := app.Delete(context.Background(), *id); err != nil {
		return err
	}
	fmt.Println("note deleted")
	return nil
}

// confirmDelete asks before a note is removed. Only y or yes confirms.
func confirmDelete(scanner *bufio.Scanner, out io.Writer) bool {
	fmt.Fprint(out, "Are you sure you want to delete this note? [y/N]: ")
	if !scanner.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printNotes(w io.Writer, notes []apiclient.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "no notes")
		return
	}
	for _, n := range notes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.UpdatedAt.Local().Format(time.DateTime), n.Title)
		for _, line := range strings.Split(n.Content, "\n") {
			fmt.Fprintf(w, "\t%s\n", line)
		}
	}
}

func printUsage() {
	fmt.Printf("notes CLI %s\n\n", buildVersion)
	fmt.Print(`Usage:
	notes register --name <name> --email user@example.com [--password secret] [--api http://localhost:5000]
	notes login --email user@example.com [--password secret] [--api http://localhost:5000]
	notes logout [--revoke]
	notes whoami
	notes list [--search text]
	notes add --title <title> --content <content>
	notes edit --id <note-id> [--title <title>] [--content <content>]
	notes rm --id <note-id> [--yes]
	notes shell
	notes version

Environment:
	NOTES_API_URL          API base URL
	NOTES_REQUEST_TIMEOUT  per-request timeout (default 15s)
	NOTES_SESSION_FILE     session file (default <user config dir>/notes/session.json)
`)
}

func printVersion() {
	fmt.Println(strings.TrimSpace(buildVersion))
}

func commandShell() error {
	app, err := newApp("")
	if err != nil {
		return err
	}
	return runShell(context.Background(), app, os.Stdin, os.Stdout)
}

// runShell drives the app from line-oriented input until EOF or "quit".
func runShell(ctx context.Context, app *client.App, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := func() {
		if user, ok := app.User(); ok {
			fmt.Fprintf(out, "%s> ", user.Email)
			return
		}
		fmt.Fprint(out, "> ")
	}
	ask := func(label string) (string, bool) {
		fmt.Fprintf(out, "%s: ", label)
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}

	if app.State() == client.Authenticated {
		if err := app.Refresh(ctx); err != nil {
			fmt.Fprintf(out, "error: %s\n", app.LastError())
		}
	}
	prompt()
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			prompt()
			continue
		}
		cmd, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(scanner.Text(), fields[0]))
		var opErr error
		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, "commands: register, login, logout, list, search <text>, add, edit <id>, cancel, rm <id>, quit")
		case "register":
			name, _ := ask("Name")
			email, _ := ask("Email")
			password, _ := ask("Password")
			opErr = app.Register(ctx, name, email, password)
		case "login":
			email, _ := ask("Email")
			password, _ := ask("Password")
			opErr = app.Login(ctx, email, password)
		case "logout":
			opErr = app.Logout()
		case "list":
			opErr = app.Refresh(ctx)
			if opErr == nil {
				printNotes(out, app.Visible())
			}
		case "search":
			app.SetFilter(rest)
			printNotes(out, app.Visible())
		case "add":
			app.CancelEdit()
			title, _ := ask("Title")
			content, _ := ask("Content")
			app.SetForm(title, content)
			opErr = app.Save(ctx)
		case "edit":
			if opErr = app.StartEdit(rest); opErr != nil {
				break
			}
			form := app.Form()
			fmt.Fprintf(out, "editing %q (blank keeps current)\n", form.Title)
			title, _ := ask("Title")
			content, _ := ask("Content")
			if strings.TrimSpace(title) == "" {
				title = form.Title
			}
			if strings.TrimSpace(content) == "" {
				content = form.Content
			}
			app.SetForm(title, content)
			opErr = app.Save(ctx)
		case "cancel":
			app.CancelEdit()
		case "rm":
			if !confirmDelete(scanner, out) {
				fmt.Fprintln(out, "delete cancelled")
				break
			}
			opErr = app.Delete(ctx, rest)
		default:
			fmt.Fprintf(out, "unknown command: %s\n", cmd)
		}
		if opErr != nil {
			fmt.Fprintf(out, "error: %v\n", opErr)
		}
		prompt()
	}
	return scanner.Err()
}
