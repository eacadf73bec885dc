package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shpitdev/connections-enricher/internal/browser"
	"github.com/shpitdev/connections-enricher/internal/browser/browsertest"
	"github.com/shpitdev/connections-enricher/internal/contacts"
)

const connectionsCSV = `First Name,Last Name,Email Address,Company,Position,Connected On
Alice,Smith,alice@example.com,Acme,CTO,01 Jan 2020
Bob,Jones,,Initech,Engineer,02 Feb 2021
`

type workspace struct {
	dir string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	w := workspace{dir: t.TempDir()}
	w.write(t, "Connections.csv", connectionsCSV)
	return w
}

func (w workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w workspace) write(t *testing.T, name, body string) {
	t.Helper()
	if err := os.WriteFile(w.path(name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func (w workspace) args(args ...string) []string {
	return append(args,
		"--store", w.path("Emails.json"),
		"--connections", w.path("Connections.csv"),
		"--config", w.path("config.json"),
		"--log-level", "error",
	)
}

func execute(t *testing.T, args []string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportThenStatus(t *testing.T) {
	w := newWorkspace(t)

	if _, err := execute(t, w.args("import")); err != nil {
		t.Fatalf("import: %v", err)
	}
	store, err := contacts.File{Path: w.path("Emails.json")}.Load()
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 contacts, got %d", store.Len())
	}

	out, err := execute(t, w.args("status"))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "email") || !strings.Contains(out, "history") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
}

func TestImport_MissingExport(t *testing.T) {
	w := workspace{dir: t.TempDir()}
	_, err := execute(t, w.args("import"))
	if err == nil || exitCode(err) != 1 {
		t.Fatalf("expected runtime error, got %v", err)
	}
}

func TestResetFailures(t *testing.T) {
	w := newWorkspace(t)
	s := contacts.NewStore()
	s.Put(contacts.Record{Name: "Alice Smith", Email: "EXCEPTION boom"})
	s.Put(contacts.Record{Name: "Bob Jones", Email: "bob@corp.test"})
	file := contacts.File{Path: w.path("Emails.json")}
	if err := file.Save(s); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := execute(t, w.args("reset-failures", "email"))
	if err != nil {
		t.Fatalf("reset-failures: %v", err)
	}
	if !strings.Contains(out, "reset 1 email failures") {
		t.Fatalf("unexpected output %q", out)
	}
	got, err := file.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if alice, _ := got.Get("Alice Smith"); alice.Email != "" {
		t.Fatalf("failure not cleared: %q", alice.Email)
	}
	if bob, _ := got.Get("Bob Jones"); bob.Email != "bob@corp.test" {
		t.Fatalf("value cleared: %q", bob.Email)
	}
}

func TestUsageErrorsExitWithTwo(t *testing.T) {
	w := newWorkspace(t)
	for _, args := range [][]string{
		w.args("reset-failures", "phone"),
		w.args("status", "--no-such-flag"),
		w.args("import", "--log-format", "xml"),
	} {
		_, err := execute(t, args)
		if err == nil || exitCode(err) != 2 {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestExtract_LoginFailureIsFatalAndKeepsImport(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "config.json", `{"email": "me@example.com", "password": "hunter2"}`)

	f := &browsertest.Factory{New: func(int) *browsertest.Driver { return browsertest.New() }}
	prev := openBrowser
	openBrowser = f.Open
	t.Cleanup(func() { openBrowser = prev })

	_, err := execute(t, w.args("email"))
	if err == nil || exitCode(err) != 1 {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Fatalf("password leaked into error: %v", err)
	}
	var authErr *browser.AuthError
	if !errors.As(err, &authErr) || authErr.Email != "me@example.com" {
		t.Fatalf("expected the AuthError to stay in the chain, got %v", err)
	}
	if len(f.Drivers()) != 1 || f.Drivers()[0].Closed() != 1 {
		t.Fatalf("expected one closed session")
	}

	store, err := contacts.File{Path: w.path("Emails.json")}.Load()
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("import should be saved before the browser run, got %d contacts", store.Len())
	}
}

func TestRedactedError(t *testing.T) {
	cause := &browser.AuthError{Email: "me@example.com", Err: errors.New("rejected s3cret!")}
	err := &redactedError{err: cause, secret: "s3cret!"}
	if strings.Contains(err.Error(), "s3cret!") {
		t.Fatalf("secret leaked: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause dropped from the chain")
	}
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode(err))
	}
}

func TestExtract_MalformedConfigIsUsageError(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "config.json", `{"email": `)

	_, err := execute(t, w.args("history"))
	if err == nil || exitCode(err) != 2 || !strings.HasPrefix(err.Error(), "config: ") {
		t.Fatalf("expected config usage error, got %v", err)
	}
}

func TestExtract_OpenErrorIsFatal(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "config.json", `{"email": "me@example.com", "password": "pw"}`)

	prev := openBrowser
	openBrowser = func(context.Context, browser.Options) (browser.Driver, error) {
		return nil, errors.New("chrome not found")
	}
	t.Cleanup(func() { openBrowser = prev })

	if _, err := execute(t, w.args("history")); err == nil || !strings.Contains(err.Error(), "chrome not found") {
		t.Fatalf("expected open error, got %v", err)
	}
}
