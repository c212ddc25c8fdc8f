package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/balancer-pools/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	writeConfig := func(content string) {
		configPath := filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(configPath, []byte(content), 0644)).To(Succeed())
		Expect(os.Chdir(tempDir)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		viper.Reset()
	})

	AfterEach(func() {
		os.Chdir(origDir)
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("with a valid config file", func() {
			BeforeEach(func() {
				writeConfig(`
environment: "dev"

logging:
  level: "info"

balancers:
  - kind: "configfile"
    user: "deploy"
    password: "secret"
    hosts:
      - "lb1.example.com"
      - "lb2.example.com"
    staging_dir: "/tmp"
  - kind: "remoteapi"
    user: "admin"
    password: "hunter2"
    endpoint: "https://lb-admin.example.com/api"
    pool_prefix: "auto-"
    grace_period: "2s"
`)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
				Expect(cfg.Balancers).To(HaveLen(2))
			})

			It("should parse the configfile entry", func() {
				cfg, _ := config.Load()
				Expect(cfg.Balancers[0].Kind).To(Equal(config.KindConfigFile))
				Expect(cfg.Balancers[0].Hosts).To(Equal([]string{"lb1.example.com", "lb2.example.com"}))
			})

			It("should parse the remoteapi entry", func() {
				cfg, _ := config.Load()
				Expect(cfg.Balancers[1].Kind).To(Equal(config.KindRemoteAPI))
				Expect(cfg.Balancers[1].PoolPrefix).To(Equal("auto-"))
				Expect(cfg.Balancers[1].GracePeriod).To(Equal("2s"))
			})
		})

		Context("with invalid backend entries", func() {
			It("should reject an unknown kind", func() {
				writeConfig(`
balancers:
  - kind: "carrier-pigeon"
    user: "deploy"
    password: "secret"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a configfile entry without hosts", func() {
				writeConfig(`
balancers:
  - kind: "configfile"
    user: "deploy"
    password: "secret"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a remoteapi entry without an endpoint", func() {
				writeConfig(`
balancers:
  - kind: "remoteapi"
    user: "admin"
    password: "hunter2"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a malformed grace period", func() {
				writeConfig(`
balancers:
  - kind: "remoteapi"
    user: "admin"
    password: "hunter2"
    endpoint: "https://lb-admin.example.com/api"
    grace_period: "soon"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a missing credential", func() {
				writeConfig(`
balancers:
  - kind: "configfile"
    hosts: ["lb1.example.com"]
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("without any balancers", func() {
			It("should fail validation", func() {
				writeConfig(`
environment: "dev"
logging:
  level: "info"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
