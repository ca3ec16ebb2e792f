package prompt

import (
	"strings"
	"testing"
	"time"

	"gearinhere/internal/domain"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

const solarPrompt = `You are Gear, the guide of Gearinhere. Here's a new product to review.

Product Title: Solar Backpack
Product Description: Charges your gear.
Product URL: https://kick.example/p/solar

Generate a structured review with these personas:

1. Gear – intro & overview
2. Spark – highlight innovation
3. Clarity – performance & comparison
4. Gaia – sustainability
5. Echo – user/community sentiment

End with a recommendation and call to action.
Output in markdown.
`

func TestCompose(t *testing.T) {
	snap := &domain.ProductSnapshot{
		Title:       ptr("Solar Backpack"),
		Description: ptr("Charges your gear."),
		Image:       ptr("https://x/img.jpg"),
		URL:         "https://kick.example/p/solar",
		ScrapedAt:   time.Now().UTC(),
	}

	require.Equal(t, solarPrompt, Compose(snap))
}

func TestComposeIsDeterministic(t *testing.T) {
	snap := &domain.ProductSnapshot{Title: ptr("Lantern %s %d"), URL: "https://a.example/x"}
	first := Compose(snap)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Compose(snap))
	}
	require.Contains(t, first, "Product Title: Lantern %s %d\n")
}

func TestComposeAbsentFields(t *testing.T) {
	out := Compose(&domain.ProductSnapshot{URL: "https://a.example/x"})

	require.Contains(t, out, "Product Title: "+Placeholder+"\n")
	require.Contains(t, out, "Product Description: "+Placeholder+"\n")
	require.Contains(t, out, "Product URL: https://a.example/x\n")
}

func TestComposeNamesEveryPersona(t *testing.T) {
	out := Compose(&domain.ProductSnapshot{URL: "https://a.example/x"})
	for _, name := range []string{"Gear", "Spark", "Clarity", "Gaia", "Echo"} {
		require.True(t, strings.Contains(out, name+" – "), "missing persona %s", name)
	}
	require.True(t, strings.HasSuffix(out, "Output in markdown.\n"))
}
