package integration

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

var commentID int64 = 5000

func newServer(t *testing.T) *TestServer {
	t.Helper()

	ts, err := NewTestServer()
	if err != nil {
		t.Skipf("integration database unavailable: %v", err)
	}
	t.Cleanup(ts.Close)

	return ts
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(WebhookSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// comment delivers an issue_comment webhook for issue 7 of rust-lang/rfcs.
func comment(t *testing.T, ts *TestServer, userID int64, login, body string) {
	t.Helper()

	commentID++
	payload, err := json.Marshal(map[string]any{
		"action":     "created",
		"repository": map[string]any{"full_name": "rust-lang/rfcs"},
		"issue": map[string]any{
			"id": 70001, "number": 7, "state": "open", "title": "Add a feature",
			"user": map[string]any{"id": 1, "login": "alice"},
		},
		"comment": map[string]any{
			"id": commentID, "body": body,
			"user":       map[string]any{"id": userID, "login": login},
			"created_at": "2024-05-01T10:00:00Z", "updated_at": "2024-05-01T10:00:00Z",
		},
	})
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/github-webhook", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "issue_comment")
	req.Header.Set("X-Hub-Signature-256", sign(payload))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("webhook request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(b))
	}
}

func doPost(t *testing.T, ts *TestServer, path, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(ts.Server.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func doGet(t *testing.T, ts *TestServer, path string, out any) {
	t.Helper()

	resp, err := http.Get(ts.Server.URL + path)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: expected 200, got %d: %s", path, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func addMember(t *testing.T, ts *TestServer, login string) {
	t.Helper()

	resp := doPost(t, ts, "/teams/rust-lang%2Flang/members", fmt.Sprintf(`{"login": %q}`, login))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(b))
	}
}

func TestHealth(t *testing.T) {
	ts := newServer(t)

	var data struct {
		Status string `json:"status"`
	}
	doGet(t, ts, "/health", &data)

	if data.Status != "ok" {
		t.Fatalf("unexpected status: %s", data.Status)
	}
}

func TestAddMemberRequiresKnownUser(t *testing.T) {
	ts := newServer(t)

	resp := doPost(t, ts, "/teams/rust-lang%2Flang/members", `{"login": "ghost"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPollLifecycle(t *testing.T) {
	ts := newServer(t)

	comment(t, ts, 1, "alice", "Looks good to me.")
	comment(t, ts, 2, "bob", "Agreed.")
	addMember(t, ts, "alice")
	addMember(t, ts, "bob")

	comment(t, ts, 1, "alice", "@rfcbot poll [T-lang] Should we merge this?")

	var status struct {
		Initiator string   `json:"initiator"`
		Pending   []string `json:"pending"`
	}
	doGet(t, ts, "/polls/rust-lang/rfcs/7", &status)

	if status.Initiator != "alice" {
		t.Fatalf("wrong initiator: %s", status.Initiator)
	}
	if len(status.Pending) != 1 || status.Pending[0] != "bob" {
		t.Fatalf("expected bob to be pending, got %v", status.Pending)
	}

	var pending struct {
		Polls []struct {
			Number int `json:"number"`
		} `json:"polls"`
	}
	doGet(t, ts, "/users/bob/pending", &pending)
	if len(pending.Polls) != 1 || pending.Polls[0].Number != 7 {
		t.Fatalf("expected one pending poll for bob, got %+v", pending.Polls)
	}

	comment(t, ts, 2, "bob", "@rfcbot reviewed")

	doGet(t, ts, "/users/bob/pending", &pending)
	if len(pending.Polls) != 0 {
		t.Fatalf("expected no pending polls for bob, got %+v", pending.Polls)
	}

	var closed struct {
		Polls []struct {
			Question string `json:"question"`
		} `json:"polls"`
	}
	doGet(t, ts, "/polls?closed=true", &closed)
	if len(closed.Polls) != 1 || closed.Polls[0].Question != "Should we merge this?" {
		t.Fatalf("expected the poll to be closed, got %+v", closed.Polls)
	}

	posted := ts.GitHub.Posted()
	if len(posted) != 2 {
		t.Fatalf("expected tracking and completion comments, got %d", len(posted))
	}
	if !strings.Contains(posted[0], "* [x] @bob") {
		t.Fatalf("tracking comment not updated: %s", posted[0])
	}
	if !strings.Contains(posted[1], "All relevant subteam members have responded") {
		t.Fatalf("unexpected completion comment: %s", posted[1])
	}
}

func TestNonMemberCannotStartPoll(t *testing.T) {
	ts := newServer(t)

	comment(t, ts, 3, "mallory", "@rfcbot poll [T-lang] Merge?")

	resp, err := http.Get(ts.Server.URL + "/polls/rust-lang/rfcs/7")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if len(ts.GitHub.Posted()) != 0 {
		t.Fatal("no comment should be posted for a rejected command")
	}
}
