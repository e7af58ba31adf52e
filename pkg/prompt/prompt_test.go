package prompt_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/etherea-os/etherea/pkg/prompt"
)

var _ = Describe("Prompt", func() {
	Describe("Build", func() {
		It("renders the Llama 3 template with the trimmed message", func() {
			built := prompt.Build("You are Etherea.", " hello ")

			Expect(built).To(Equal("<|begin_of_text|><|start_header_id|>system<|end_header_id|>\n" +
				"You are Etherea.<|eot_id|>" +
				"<|start_header_id|>user<|end_header_id|>\n" +
				"hello<|eot_id|>" +
				"<|start_header_id|>assistant<|end_header_id|>\n"))
		})

		It("keeps the system prompt verbatim", func() {
			system := prompt.SystemPrompt("Line one\n  Line two  ")
			built := prompt.Build(system, "hi")

			Expect(built).To(ContainSubstring("\nLine one\n  Line two  <|eot_id|>"))
		})

		It("places markers in order", func() {
			built := prompt.Build("sys", "msg")

			order := []string{
				prompt.BeginOfText,
				"system" + prompt.EndHeader,
				"sys",
				prompt.EndOfTurn,
				"user" + prompt.EndHeader,
				"msg",
				prompt.EndOfTurn,
				"assistant" + prompt.EndHeader,
			}
			rest := built
			for _, part := range order {
				idx := strings.Index(rest, part)
				Expect(idx).To(BeNumerically(">=", 0), "missing %q", part)
				rest = rest[idx+len(part):]
			}
			Expect(rest).To(Equal("\n"))
		})

		It("accepts an empty message", func() {
			built := prompt.Build("sys", "   ")

			Expect(built).To(ContainSubstring("user<|end_header_id|>\n<|eot_id|>"))
		})
	})

	Describe("Load", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("trims the file contents", func() {
			path := filepath.Join(dir, "system.txt")
			Expect(os.WriteFile(path, []byte("\n  You are Etherea.\n\n"), 0o644)).To(Succeed())

			system, err := prompt.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(system).To(Equal(prompt.SystemPrompt("You are Etherea.")))
			Expect(system.Loaded()).To(BeTrue())
		})

		It("fails for a missing file", func() {
			_, err := prompt.Load(filepath.Join(dir, "absent.txt"))

			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(fs.ErrNotExist))
		})

		It("reports an empty file as not loaded", func() {
			path := filepath.Join(dir, "empty.txt")
			Expect(os.WriteFile(path, []byte("  \n"), 0o644)).To(Succeed())

			system, err := prompt.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(system.Loaded()).To(BeFalse())
		})
	})
})
