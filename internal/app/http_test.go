package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *Service, *memStore) {
	t.Helper()
	dataStore := newMemStore()
	svc := newTestService(dataStore, newFakeObjects())
	server := httptest.NewServer(NewHTTPServer(svc, "*").Handler())
	t.Cleanup(server.Close)
	return server, svc, dataStore
}

func authedRequest(t *testing.T, method, url, token string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestHealthEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decodeResponse(t, resp)
	if payload["ok"] != true {
		t.Fatalf("expected ok true, got %v", payload)
	}
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	server, _, _ := newTestServer(t)

	for _, path := range []string{"/api/documents", "/api/search?q=x"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", path, resp.StatusCode)
		}
		payload := decodeResponse(t, resp)
		if payload["code"] != "UNAUTHORIZED" {
			t.Fatalf("expected UNAUTHORIZED code, got %v", payload)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/documents", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with bad token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestDocumentLifecycleOverHTTP(t *testing.T) {
	server, svc, dataStore := newTestServer(t)
	seedIdentity(dataStore, "id-owner", "Priya")
	session, err := svc.CreateSession(context.Background(), "id-owner")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	resp, err := http.DefaultClient.Do(authedRequest(t, http.MethodPost, server.URL+"/api/documents", session.Token, map[string]any{
		"title":       "Launch Plan",
		"description": "Q3 rollout",
	}))
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeResponse(t, resp)["document"].(map[string]any)
	documentID := created["id"].(string)
	if created["title"] != "Launch Plan" {
		t.Fatalf("unexpected document payload: %v", created)
	}

	resp, err = http.DefaultClient.Do(authedRequest(t, http.MethodGet, server.URL+"/api/documents", session.Token, nil))
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	listed := decodeResponse(t, resp)["documents"].([]any)
	if len(listed) != 1 {
		t.Fatalf("expected one document, got %d", len(listed))
	}

	resp, err = http.DefaultClient.Do(authedRequest(t, http.MethodPatch, server.URL+"/api/documents/"+documentID, session.Token, map[string]any{
		"title": "Launch Plan v2",
	}))
	if err != nil {
		t.Fatalf("patch document: %v", err)
	}
	patched := decodeResponse(t, resp)["document"].(map[string]any)
	if patched["title"] != "Launch Plan v2" {
		t.Fatalf("expected renamed title, got %v", patched["title"])
	}

	resp, err = http.DefaultClient.Do(authedRequest(t, http.MethodGet, server.URL+"/api/documents/doc_missing", session.Token, nil))
	if err != nil {
		t.Fatalf("get missing document: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	payload := decodeResponse(t, resp)
	if payload["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND code, got %v", payload)
	}

	resp, err = http.DefaultClient.Do(authedRequest(t, http.MethodDelete, server.URL+"/api/documents/"+documentID, session.Token, nil))
	if err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestVersionUploadAndDownloadOverHTTP(t *testing.T) {
	server, svc, dataStore := newTestServer(t)
	seedIdentity(dataStore, "id-owner", "Priya")
	session, err := svc.CreateSession(context.Background(), "id-owner")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	doc, err := svc.CreateDocument(context.Background(), Identity{ID: "id-owner", Name: "Priya"}, "Spec", "", false)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "spec.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("version one contents")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.WriteField("notes", "initial draft"); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/documents/"+doc.ID+"/versions", &form)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload version: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	uploaded := decodeResponse(t, resp)["version"].(map[string]any)
	if uploaded["versionNumber"] != float64(1) || uploaded["notes"] != "initial draft" {
		t.Fatalf("unexpected version payload: %v", uploaded)
	}

	resp, err = http.DefaultClient.Do(authedRequest(t, http.MethodGet, fmt.Sprintf("%s/api/documents/%s/versions/1/download", server.URL, doc.ID), session.Token, nil))
	if err != nil {
		t.Fatalf("download version: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on download, got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "version one contents" {
		t.Fatalf("unexpected downloaded content: %q", data)
	}
	if disposition := resp.Header.Get("Content-Disposition"); !strings.Contains(disposition, "spec.txt") {
		t.Fatalf("expected filename in disposition, got %q", disposition)
	}
}

func TestApprovalResolveOverHTTP(t *testing.T) {
	server, svc, dataStore := newTestServer(t)
	seedIdentity(dataStore, "id-owner", "Priya")
	reviewer := seedIdentity(dataStore, "id-reviewer", "Noah")

	owner := Identity{ID: "id-owner", Name: "Priya"}
	doc, _ := svc.CreateDocument(context.Background(), owner, "Spec", "", false)
	if _, err := svc.ShareDocument(context.Background(), owner, doc.ID, reviewer.ID, "view"); err != nil {
		t.Fatalf("ShareDocument: %v", err)
	}
	approval, err := svc.RequestApproval(context.Background(), owner, doc.ID, reviewer.ID, nil, "")
	if err != nil {
		t.Fatalf("RequestApproval: %v", err)
	}

	session, err := svc.CreateSession(context.Background(), reviewer.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	resp, err := http.DefaultClient.Do(authedRequest(t, http.MethodPost, server.URL+"/api/approvals/"+approval.ID+"/resolve", session.Token, map[string]any{
		"status": "approved",
		"notes":  "looks good",
	}))
	if err != nil {
		t.Fatalf("resolve approval: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resolved := decodeResponse(t, resp)["approval"].(map[string]any)
	if resolved["status"] != "approved" {
		t.Fatalf("expected approved, got %v", resolved["status"])
	}

	// Second resolve hits the terminal-state guard.
	resp, err = http.DefaultClient.Do(authedRequest(t, http.MethodPost, server.URL+"/api/approvals/"+approval.ID+"/resolve", session.Token, map[string]any{
		"status": "rejected",
	}))
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	payload := decodeResponse(t, resp)
	if payload["code"] != "INVALID_STATE" {
		t.Fatalf("expected INVALID_STATE, got %v", payload)
	}
}
