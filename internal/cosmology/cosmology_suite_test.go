package cosmology_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCosmology(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cosmology Suite")
}
