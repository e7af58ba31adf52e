package config_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/etherea-os/etherea/pkg/config"
)

var _ = Describe("Config", func() {
	var dir string

	setenv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, key)
	}

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		wd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(os.Chdir, wd)
	})

	Describe("Load", func() {
		It("returns defaults when no file or environment is present", func() {
			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.Defaults()))
			Expect(cfg.LLM.BaseURL).To(Equal("http://localhost:8080"))
			Expect(cfg.LLM.CompletionPath).To(Equal("/completion"))
			Expect(cfg.LLM.NPredict).To(Equal(512))
			Expect(cfg.LLM.Temperature).To(Equal(0.7))
			Expect(cfg.LLM.TopP).To(Equal(0.9))
			Expect(cfg.Agent.SystemPromptFile).To(Equal("prompts/etherea-system.txt"))
		})

		It("reads etherea.toml from the working directory", func() {
			writeFile(config.DefaultFile, `
listen = ":9000"

[llm]
base_url = "http://gpu-box:8080"
n_predict = 256
`)
			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Listen).To(Equal(":9000"))
			Expect(cfg.LLM.BaseURL).To(Equal("http://gpu-box:8080"))
			Expect(cfg.LLM.NPredict).To(Equal(256))
			Expect(cfg.LLM.TopP).To(Equal(0.9))
		})

		It("fails for a named file that does not exist", func() {
			_, err := config.Load(filepath.Join(dir, "missing.toml"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("missing.toml"))
		})

		It("rejects unknown keys", func() {
			path := writeFile("typo.toml", "[llm]\nbase_ulr = \"http://x\"\n")

			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("llm.base_ulr"))
		})

		It("lets the environment override the file", func() {
			path := writeFile("custom.toml", "[llm]\ntemperature = 0.2\n")
			setenv("ETHEREA_TEMPERATURE", "1.1")
			setenv("ETHEREA_AGENT_NAME", "Nyx")

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.LLM.Temperature).To(Equal(1.1))
			Expect(cfg.Agent.Name).To(Equal("Nyx"))
		})

		It("applies .env values without overriding the real environment", func() {
			writeFile(".env", "ETHEREA_LLM_BASE_URL=http://from-dotenv:8080\nETHEREA_N_PREDICT=128\n")
			setenv("ETHEREA_N_PREDICT", "64")
			DeferCleanup(os.Unsetenv, "ETHEREA_LLM_BASE_URL")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.LLM.BaseURL).To(Equal("http://from-dotenv:8080"))
			Expect(cfg.LLM.NPredict).To(Equal(64))
		})

		It("reports malformed environment values", func() {
			setenv("ETHEREA_LLM_TIMEOUT_SECONDS", "soon")

			_, err := config.Load("")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("ETHEREA_LLM_TIMEOUT_SECONDS"))
		})
	})

	Describe("Validate", func() {
		It("accepts the defaults", func() {
			Expect(config.Defaults().Validate()).To(Succeed())
		})

		DescribeTable("rejects unusable values",
			func(mutate func(*config.Config), field string) {
				cfg := config.Defaults()
				mutate(&cfg)

				err := cfg.Validate()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(field))
			},
			Entry("empty base url", func(c *config.Config) { c.LLM.BaseURL = "" }, "llm.base_url"),
			Entry("relative completion path", func(c *config.Config) { c.LLM.CompletionPath = "completion" }, "llm.completion_path"),
			Entry("zero timeout", func(c *config.Config) { c.LLM.TimeoutSeconds = 0 }, "llm.timeout_seconds"),
			Entry("zero n_predict", func(c *config.Config) { c.LLM.NPredict = 0 }, "llm.n_predict"),
			Entry("negative temperature", func(c *config.Config) { c.LLM.Temperature = -0.1 }, "llm.temperature"),
			Entry("top_p above one", func(c *config.Config) { c.LLM.TopP = 1.5 }, "llm.top_p"),
			Entry("no system prompt file", func(c *config.Config) { c.Agent.SystemPromptFile = "" }, "agent.system_prompt_file"),
		)
	})

	Describe("Write", func() {
		It("round-trips through TOML", func() {
			cfg := config.Defaults()
			cfg.Agent.Name = "Nyx"

			var buf bytes.Buffer
			Expect(cfg.Write(&buf)).To(Succeed())

			var decoded config.Config
			_, err := toml.Decode(buf.String(), &decoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(cfg))
		})
	})
})
