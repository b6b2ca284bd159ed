package servecmder

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/masque/pkg/config"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("registers every relay flag with its default", func() {
		cmd := NewServeCmd()

		for _, key := range serveFlags {
			Expect(cmd.Flags().Lookup(config.Registry[key].Name)).NotTo(BeNil(), key)
		}

		Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal("127.0.0.1:3459"))
		Expect(cmd.Flags().Lookup("snapshot-provider").DefValue).To(Equal("memory"))
		Expect(cmd.Flags().Lookup("max-retries").DefValue).To(Equal("0"))
	})
})

var _ = Describe("serve configuration", func() {
	var (
		cmder     *serveCommander
		cmd       *cobra.Command
		configDir string
	)

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		cmder = &serveCommander{}
		cmd = newServeCmd(cmder)
		cmd.Flags().String("config-dir", configDir, "")
	})

	preRun := func(args ...string) {
		Expect(cmd.ParseFlags(args)).To(Succeed())
		Expect(cmd.PreRunE(cmd, nil)).To(Succeed())
	}

	It("uses defaults when nothing is configured", func() {
		preRun()

		Expect(cmder.listen).To(Equal("127.0.0.1:3459"))
		Expect(cmder.upstream).To(Equal("http://localhost:8088/api/v1/stream/test_app/test_env/"))
		Expect(cmder.eventStreamProvider).To(Equal("nop"))
	})

	It("reads values from config.toml", func() {
		toml := "[upstream]\nurl = \"https://example.com/stream\"\nusername = \"dev\"\n\n[server]\nmcp = true\n"
		Expect(os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(toml), 0o600)).To(Succeed())

		preRun()

		Expect(cmder.upstream).To(Equal("https://example.com/stream"))
		Expect(cmder.username).To(Equal("dev"))
		Expect(cmder.mcp).To(BeTrue())
	})

	It("prefers environment variables over config.toml", func() {
		toml := "[server]\nlisten = \"127.0.0.1:9000\"\n"
		Expect(os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(toml), 0o600)).To(Succeed())
		GinkgoT().Setenv("MASQUE_SERVER_LISTEN", "127.0.0.1:9100")

		preRun()

		Expect(cmder.listen).To(Equal("127.0.0.1:9100"))
	})

	It("prefers flags over environment variables", func() {
		GinkgoT().Setenv("MASQUE_SERVER_LISTEN", "127.0.0.1:9100")

		preRun("--listen", "127.0.0.1:9200", "--max-retries", "5")

		Expect(cmder.listen).To(Equal("127.0.0.1:9200"))
		Expect(cmder.maxRetries).To(Equal(uint(5)))
	})

	Describe("relayConfig", func() {
		It("parses backoff durations", func() {
			preRun("--initial-backoff", "250ms", "--max-backoff", "1m")

			rc, err := cmder.relayConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(rc.InitialBackoff).To(Equal(250 * time.Millisecond))
			Expect(rc.MaxBackoff).To(Equal(time.Minute))
			Expect(rc.UpstreamURL).To(Equal(cmder.upstream))
		})

		It("rejects an invalid duration", func() {
			preRun("--initial-backoff", "soon")

			_, err := cmder.relayConfig()
			Expect(err).To(MatchError(ContainSubstring("invalid initial backoff")))
		})
	})

	Describe("buildLogger", func() {
		It("reads the log file from config.toml", func() {
			toml := "[server]\nlog_file = \"/var/log/masque.json\"\n"
			Expect(os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(toml), 0o600)).To(Succeed())

			preRun()

			Expect(cmder.logFile).To(Equal("/var/log/masque.json"))
		})

		It("writes only to the console without a log file", func() {
			preRun()

			var out bytes.Buffer
			l, closeLog, err := cmder.buildLogger(&out, false)
			Expect(err).NotTo(HaveOccurred())
			l.Info("relay started")
			Expect(closeLog()).To(Succeed())

			Expect(out.String()).To(ContainSubstring("relay started"))
		})

		It("also appends JSON records to the log file", func() {
			logPath := filepath.Join(configDir, "serve.log")
			preRun("--log-file", logPath)

			var out bytes.Buffer
			l, closeLog, err := cmder.buildLogger(&out, false)
			Expect(err).NotTo(HaveOccurred())
			l.Info("relay started", "upstream", "http://example.com/stream")
			Expect(closeLog()).To(Succeed())

			Expect(out.String()).To(ContainSubstring("relay started"))

			data, err := os.ReadFile(logPath)
			Expect(err).NotTo(HaveOccurred())

			var record map[string]any
			Expect(json.Unmarshal([]byte(strings.TrimSpace(string(data))), &record)).To(Succeed())
			Expect(record["msg"]).To(Equal("relay started"))
			Expect(record["upstream"]).To(Equal("http://example.com/stream"))
			Expect(record).To(HaveKey("source"))
		})

		It("fails when the log file cannot be opened", func() {
			preRun("--log-file", filepath.Join(configDir, "missing", "serve.log"))

			_, _, err := cmder.buildLogger(&bytes.Buffer{}, false)
			Expect(err).To(MatchError(ContainSubstring("opening log file")))
		})
	})
})
