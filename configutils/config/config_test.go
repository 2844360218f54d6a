// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ironcore-dev/bif-utils/configutils/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	writeFile := func(content string) string {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	It("should default without a file", func() {
		c, err := config.Load("")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.SysfsRoot).To(Equal("/sys"))

		gen, err := c.Generation(config.DefaultGeneration)
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.GrantPollOptions().Timeout).To(Equal(4 * time.Second))
		Expect(gen.GrantPollOptions().Interval).To(Equal(time.Millisecond))
	})

	It("should load generations and default missing fields", func() {
		c, err := config.Load(writeFile(`
sysfsRoot: /host/sys
generations:
  ad102:
    grantTimeout: 10s
  gh100:
    grantPollInterval: 5ms
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.SysfsRoot).To(Equal("/host/sys"))

		ad102, err := c.Generation("ad102")
		Expect(err).NotTo(HaveOccurred())
		Expect(ad102.GrantTimeout.Duration).To(Equal(10 * time.Second))
		Expect(ad102.GrantPollInterval.Duration).To(Equal(time.Millisecond))

		gh100, err := c.Generation("gh100")
		Expect(err).NotTo(HaveOccurred())
		Expect(gh100.GrantTimeout.Duration).To(Equal(4 * time.Second))
		Expect(gh100.GrantPollInterval.Duration).To(Equal(5 * time.Millisecond))

		_, err = c.Generation("gm107")
		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown fields", func() {
		_, err := config.Load(writeFile("grantTimeout: 1s\n"))
		Expect(err).To(HaveOccurred())
	})

	It("should fail on a missing file", func() {
		_, err := config.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})
})
