package model

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// Set DEBUG_TESTS=1 to see per-party logs.
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}
	os.Exit(m.Run())
}
