package landing_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLanding(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Landing Suite")
}
