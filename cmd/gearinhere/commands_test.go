package main

import (
	"bytes"
	"strings"
	"testing"

	"gearinhere/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPrintPreview(t *testing.T) {
	long := strings.Repeat("é", 250)
	d := &domain.Draft{
		Source:   domain.SourceAmazon,
		Snapshot: &domain.ProductSnapshot{Description: &long},
		Notices:  []string{domain.NoticeNoImage},
	}

	var buf bytes.Buffer
	printPreview(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "Title: Amazon Product\n")
	assert.Contains(t, out, "Description: "+strings.Repeat("é", 200)+"...\n")
	assert.Contains(t, out, "Note: "+domain.NoticeNoImage+"\n")
	assert.NotContains(t, out, "Image:")
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "draft", "publish"} {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	draft, _, _ := root.Find([]string{"draft"})
	assert.Equal(t, "kickstarter", draft.Flags().Lookup("source").DefValue)
}
