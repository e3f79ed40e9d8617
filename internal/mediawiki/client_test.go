package mediawiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeWiki is a minimal api.php implementation for session tests.
type fakeWiki struct {
	t        *testing.T
	content  string
	loggedIn bool
	edits    []map[string]string
	failCode string // when set, every call returns this API error
}

func (f *fakeWiki) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			f.t.Fatalf("parsing form: %v", err)
		}
		if f.failCode != "" {
			fmt.Fprintf(w, `{"error":{"code":%q,"info":"induced failure"}}`, f.failCode)
			return
		}

		action := r.Form.Get("action")
		switch {
		case action == "query" && r.Form.Get("meta") == "tokens":
			if r.Method != http.MethodGet {
				f.t.Errorf("token fetch used %s, want GET", r.Method)
			}
			kind := r.Form.Get("type")
			fmt.Fprintf(w, `{"query":{"tokens":{"%stoken":"%s-token+\\"}}}`, kind, kind)

		case action == "query" && r.Form.Get("prop") == "revisions":
			fmt.Fprintf(w, `{"query":{"pages":{"42":{"revisions":[{"*":%q}]}}}}`, f.content)

		case action == "login":
			if r.Method != http.MethodPost {
				f.t.Errorf("login used %s, want POST", r.Method)
			}
			if r.Form.Get("lgtoken") != "login-token+\\" {
				f.t.Errorf("login token = %q", r.Form.Get("lgtoken"))
			}
			if r.Form.Get("lgname") != "CountsBot" || r.Form.Get("lgpassword") != "hunter2" {
				fmt.Fprint(w, `{"login":{"result":"Failed","reason":"bad credentials"}}`)
				return
			}
			f.loggedIn = true
			fmt.Fprint(w, `{"login":{"result":"Success"}}`)

		case action == "edit":
			if r.Form.Get("assert") != "user" {
				f.t.Errorf("edit assert = %q, want user", r.Form.Get("assert"))
			}
			if r.Form.Get("token") != "csrf-token+\\" {
				f.t.Errorf("edit token = %q", r.Form.Get("token"))
			}
			edit := map[string]string{
				"title":   r.Form.Get("title"),
				"text":    r.Form.Get("text"),
				"summary": r.Form.Get("summary"),
				"bot":     r.Form.Get("bot"),
			}
			f.edits = append(f.edits, edit)
			fmt.Fprint(w, `{"edit":{"result":"Success"}}`)

		case action == "logout":
			f.loggedIn = false
			fmt.Fprint(w, `{}`)

		default:
			f.t.Errorf("unexpected API call: %v", r.Form)
			fmt.Fprint(w, `{"error":{"code":"unknown_action","info":"?"}}`)
		}
	}
}

func newTestSession(t *testing.T, wiki *fakeWiki) *Client {
	t.Helper()
	wiki.t = t
	srv := httptest.NewServer(wiki.handler())
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/api.php", "CountsBot", "hunter2")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestLoginLogout(t *testing.T) {
	wiki := &fakeWiki{}
	c := newTestSession(t, wiki)

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !wiki.loggedIn {
		t.Error("wiki did not record a login")
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if wiki.loggedIn {
		t.Error("wiki still logged in after Logout")
	}
}

func TestLogin_RejectedCredentials(t *testing.T) {
	wiki := &fakeWiki{}
	c := newTestSession(t, wiki)
	c.password = "wrong"

	if err := c.Login(context.Background()); err == nil {
		t.Fatal("Login with bad credentials succeeded")
	}
}

func TestPageContent(t *testing.T) {
	wiki := &fakeWiki{content: "count_99s[\"attack\"] = \"1,234\"\n"}
	c := newTestSession(t, wiki)

	text, err := c.PageContent(context.Background(), "Module:Hiscore counts")
	if err != nil {
		t.Fatalf("PageContent: %v", err)
	}
	if text != wiki.content {
		t.Errorf("PageContent = %q, want %q", text, wiki.content)
	}
}

func TestEditPage(t *testing.T) {
	wiki := &fakeWiki{}
	c := newTestSession(t, wiki)

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	err := c.EditPage(context.Background(), "Module:Hiscore counts", "new text", "Updating hiscore counts", true)
	if err != nil {
		t.Fatalf("EditPage: %v", err)
	}

	if len(wiki.edits) != 1 {
		t.Fatalf("recorded %d edits, want 1", len(wiki.edits))
	}
	edit := wiki.edits[0]
	if edit["title"] != "Module:Hiscore counts" || edit["text"] != "new text" {
		t.Errorf("edit = %+v", edit)
	}
	if edit["summary"] != "Updating hiscore counts" {
		t.Errorf("edit summary = %q", edit["summary"])
	}
	if edit["bot"] != "1" {
		t.Errorf("edit bot flag = %q, want 1", edit["bot"])
	}
}

func TestAPIErrorsSurface(t *testing.T) {
	wiki := &fakeWiki{failCode: "ratelimited"}
	c := newTestSession(t, wiki)

	_, err := c.PageContent(context.Background(), "Module:Hiscore counts")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("PageContent error = %v, want *APIError", err)
	}
	if apiErr.Code != "ratelimited" {
		t.Errorf("APIError.Code = %q", apiErr.Code)
	}
}
