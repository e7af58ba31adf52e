package chatcmder

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Chat Command", func() {
	var (
		mu       sync.Mutex
		received map[string]any
		status   int
		reply    string
		server   *httptest.Server
	)

	respond := func(code int, payload string) {
		mu.Lock()
		defer mu.Unlock()
		status, reply = code, payload
	}

	BeforeEach(func() {
		received = nil
		respond(http.StatusOK, `{"role":"chat","text":"Hello, traveller.","command":null}`)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(r.Method).To(Equal(http.MethodPost))

			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			Expect(json.Unmarshal(body, &received)).To(Succeed())
			code, payload := status, reply
			mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			w.Write([]byte(payload))
		}))
		DeferCleanup(server.Close)
	})

	run := func(args ...string) (string, error) {
		cmd := NewChatCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(append([]string{"--server", server.URL + "/"}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	lastRequest := func() map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return received
	}

	It("prints the chat text", func() {
		out, err := run("hello", "there")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Hello, traveller.\n"))
		Expect(lastRequest()).To(Equal(map[string]any{"message": "hello there"}))
	})

	It("prints tool commands", func() {
		respond(http.StatusOK, `{"role":"tool","text":null,"command":"TOOL_COMMAND: open_settings"}`)

		out, err := run("open settings")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("TOOL_COMMAND: open_settings\n"))
	})

	It("sends sampling flags only when set", func() {
		_, err := run("--temp", "0.2", "--n-predict", "64", "hi")
		Expect(err).NotTo(HaveOccurred())

		got := lastRequest()
		Expect(got).To(HaveKeyWithValue("temp", 0.2))
		Expect(got).To(HaveKeyWithValue("n_predict", float64(64)))
		Expect(got).NotTo(HaveKey("top_p"))
	})

	It("prints the raw JSON reply", func() {
		out, err := run("--raw", "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(reply + "\n"))
	})

	It("surfaces the relay's error detail", func() {
		respond(http.StatusServiceUnavailable, `{"detail":"Cannot connect to LLM server. Is llama-server running?"}`)

		_, err := run("hi")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("relay returned 503"))
		Expect(err.Error()).To(ContainSubstring("Is llama-server running?"))
	})

	It("requires a message", func() {
		_, err := run()
		Expect(err).To(HaveOccurred())
	})
})
