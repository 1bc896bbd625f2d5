package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aryanarora07/podlyze/internal/app/services"
	"github.com/aryanarora07/podlyze/internal/domain/auth"
	"github.com/aryanarora07/podlyze/internal/domain/fetch"
	"github.com/aryanarora07/podlyze/internal/domain/job"
	llminter "github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/platform/storage"
	platformtesting "github.com/aryanarora07/podlyze/internal/platform/testing"
	httptransport "github.com/aryanarora07/podlyze/internal/transport/http"
)

type fakeLLM struct {
	reply  string
	err    error
	deltas []llminter.Delta
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llminter.Message) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Stream(ctx context.Context, messages []llminter.Message) (<-chan llminter.Delta, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan llminter.Delta, len(f.deltas))
	for _, d := range f.deltas {
		ch <- d
	}
	close(ch)
	return ch, nil
}

type fakeASR struct {
	text string
	err  error
}

func (f *fakeASR) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f.text, f.err
}

type stubFetcher struct{ err error }

func (f *stubFetcher) Fetch(ctx context.Context, mediaURL, destDir string) (*fetch.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	file, err := os.CreateTemp(destDir, "media-*.mp3")
	if err != nil {
		return nil, err
	}
	file.Close()
	return &fetch.Result{Path: file.Name(), Title: "Stub Episode"}, nil
}

type harness struct {
	engine  *gin.Engine
	llm     *fakeLLM
	asr     *fakeASR
	fetcher *stubFetcher
	tracker *job.Tracker
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := platformtesting.SetupTestConfig(t)
	cfg.Fetch.MaxAttempts = 1
	cfg.Web.Enabled = false
	logger := platformtesting.SetupTestLogger(t)

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	summaries := storage.NewSummaryRepository(db)

	h := &harness{
		llm:     &fakeLLM{reply: "summary text", deltas: []llminter.Delta{{Content: "a"}, {Content: "b"}}},
		asr:     &fakeASR{text: "transcript text"},
		fetcher: &stubFetcher{},
		tracker: job.NewTracker(job.NewMemoryStore(), logger.Tagged()),
	}

	summarySvc := services.NewSummaryService(cfg, logger, h.asr, h.llm, h.tracker, summaries)
	summarySvc.SelectFetcher = func(string) fetch.Fetcher { return h.fetcher }
	chatSvc := services.NewChatService(cfg, logger, h.llm, summaries)
	translateSvc := services.NewTranslateService(cfg, logger, h.llm)
	accounts := auth.NewService(storage.NewUserRepository(db), "test-secret", 0, logger.Tagged())

	router, err := httptransport.Build(httptransport.Options{Config: cfg, Logger: logger.Tagged()})
	if err != nil {
		t.Fatalf("building router: %v", err)
	}
	apiSvc, err := NewService(cfg, logger.Tagged(), summarySvc, chatSvc, translateSvc, accounts)
	if err != nil {
		t.Fatalf("building api service: %v", err)
	}
	if err := apiSvc.Register(context.Background(), router.API); err != nil {
		t.Fatalf("registering routes: %v", err)
	}

	h.engine = router.Engine
	return h
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleSummarize(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/summarize", `{"url":"https://example.com/a.mp3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`"success":true`, "summary text", "transcript text", "Stub Episode"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q: %s", want, body)
		}
	}
}

func TestHandleSummarize_MissingURL(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/summarize", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSummarize_PipelineFailure(t *testing.T) {
	h := newHarness(t)
	h.fetcher.err = errors.New("origin unreachable")

	rec := h.do(t, http.MethodPost, "/api/summarize", `{"url":"u"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("body missing error field: %s", rec.Body.String())
	}
}

func TestHandleProgress(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/progress", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"progress":0`) {
		t.Errorf("idle progress = %d %s", rec.Code, rec.Body.String())
	}

	snap, _ := h.tracker.Start(context.Background(), "u")
	h.tracker.Advance(context.Background(), snap.ID, job.StatusTranscribing, 60)

	rec = h.do(t, http.MethodGet, "/api/progress", "")
	if !strings.Contains(rec.Body.String(), `"progress":60`) {
		t.Errorf("active progress body = %s", rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, "/api/progress/"+snap.ID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"transcribing"`) {
		t.Errorf("progress by id = %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, "/api/progress/not-a-job", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", rec.Code)
	}
}

func TestHandleChat_StreamFraming(t *testing.T) {
	h := newHarness(t)
	h.llm.deltas = []llminter.Delta{{Content: "Hello"}, {Content: " there"}}

	rec := h.do(t, http.MethodPost, "/api/chat", `{"summary":"ctx","message":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	frames := []string{
		`data: {"start":true}`,
		`data: {"content":"Hello"}`,
		`data: {"content":" there"}`,
		`data: {"done":true}`,
	}
	pos := -1
	for _, frame := range frames {
		idx := strings.Index(body, frame)
		if idx < 0 {
			t.Fatalf("body missing frame %q: %s", frame, body)
		}
		if idx < pos {
			t.Fatalf("frame %q out of order: %s", frame, body)
		}
		pos = idx
	}
}

func TestHandleChat_UpstreamFailureOmitsDoneFrame(t *testing.T) {
	h := newHarness(t)
	h.llm.deltas = []llminter.Delta{{Content: "partial"}, {Err: errors.New("model died")}}

	rec := h.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	body := rec.Body.String()
	if !strings.Contains(body, `data: {"start":true}`) {
		t.Fatalf("body missing start frame: %s", body)
	}
	if !strings.Contains(body, `data: {"content":"partial"}`) {
		t.Errorf("body missing partial content: %s", body)
	}
	if strings.Contains(body, `"done"`) {
		t.Errorf("body must not contain done frame after upstream failure: %s", body)
	}
}

func TestHandleChat_OpenFailureUsesEnvelope(t *testing.T) {
	h := newHarness(t)
	h.llm.err = errors.New("refused")

	rec := h.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleTranslate(t *testing.T) {
	h := newHarness(t)
	h.llm.reply = "bonjour"

	rec := h.do(t, http.MethodPost, "/api/translate", `{"text":"hello","targetLanguage":"French"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bonjour") {
		t.Errorf("translate = %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodPost, "/api/translate", `{"text":"hello"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing targetLanguage status = %d, want 400", rec.Code)
	}

	// The language rides under the targetLanguage key; the old short
	// name must not bind.
	rec = h.do(t, http.MethodPost, "/api/translate", `{"text":"hello","language":"French"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("legacy language key status = %d, want 400", rec.Code)
	}
}

func TestAuthEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/auth/signup", `{"name":"Ada","email":"ada@example.com","password":"hunter22"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Errorf("signup body missing token: %s", rec.Body.String())
	}

	rec = h.do(t, http.MethodPost, "/api/auth/signup", `{"name":"Ada","email":"ada@example.com","password":"other66"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", rec.Code)
	}

	rec = h.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d", rec.Code)
	}

	rec = h.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"wrong66"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
}

func TestHandleSummaries(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(t, http.MethodPost, "/api/summarize", `{"url":"u"}`); rec.Code != http.StatusOK {
		t.Fatalf("summarize status = %d", rec.Code)
	}

	rec := h.do(t, http.MethodGet, "/api/summaries", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Stub Episode") {
		t.Errorf("summaries = %d %s", rec.Code, rec.Body.String())
	}
}
