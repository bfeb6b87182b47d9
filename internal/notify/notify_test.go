package notify_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/aggregator-service/internal/ingest"
	"jobmate/aggregator-service/internal/notify"
)

type counting struct {
	calls int
	err   error
}

func (c *counting) Notify(context.Context, ingest.BatchReport) error {
	c.calls++
	return c.err
}

func report(n int) ingest.BatchReport {
	r := ingest.BatchReport{Received: n + 3, Stored: n, Duplicates: 1, InBatchDupes: 1, NotLocal: 1}
	for i := 0; i < n; i++ {
		r.StoredJobs = append(r.StoredJobs, ingest.StoredJob{
			ID: int64(i + 1), Title: fmt.Sprintf("AI Consultant %d", i), Company: "NNIT",
			URL: fmt.Sprintf("https://jobs.dk/%d", i), Score: 0.45,
		})
	}
	return r
}

func TestMulti_CallsEveryNotifier(t *testing.T) {
	a := &counting{err: errors.New("a failed")}
	b := &counting{}
	err := notify.Multi{a, b}.Notify(context.Background(), report(1))

	assert.EqualError(t, err, "a failed")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestCombine(t *testing.T) {
	a, b := &counting{}, &counting{}

	assert.Equal(t, notify.Nop{}, notify.Combine())
	assert.Equal(t, notify.Nop{}, notify.Combine(nil))
	assert.Same(t, a, notify.Combine(nil, a))
	assert.Equal(t, notify.Multi{a, b}, notify.Combine(a, nil, b))
}

func TestSummary(t *testing.T) {
	s := notify.Summary(report(2))

	assert.True(t, strings.HasPrefix(s, "🤖 <b>2 new AI jobs in Denmark</b>"))
	assert.Contains(t, s, "received 5 · duplicates 2 · filtered 1 · failed 0")
	assert.Contains(t, s, `<a href="https://jobs.dk/0">AI Consultant 0</a> · NNIT (0.45)`)
	assert.Contains(t, s, `<a href="https://jobs.dk/1">AI Consultant 1</a>`)
}

func TestSummary_EscapesHTMLAndTruncates(t *testing.T) {
	r := report(12)
	r.StoredJobs[0].Company = "R&D <Lab>"

	s := notify.Summary(r)

	assert.Contains(t, s, "R&amp;D &lt;Lab&gt;")
	assert.Contains(t, s, "… and 2 more")
	assert.NotContains(t, s, "AI Consultant 10")
}

func TestTelegram_SendsSummary(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"agg","username":"agg_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			r.ParseForm()
			mu.Lock()
			sent = append(sent, r.PostForm.Get("chat_id")+"|"+r.PostForm.Get("parse_mode")+"|"+r.PostForm.Get("text"))
			mu.Unlock()
			io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tg, err := notify.NewTelegramWithClient("token", srv.URL+"/bot%s/%s", srv.Client(), 42)
	require.NoError(t, err)

	require.NoError(t, tg.Notify(context.Background(), report(1)))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0], "42|HTML|🤖 <b>1 new AI jobs"), sent[0])
}
