package alerts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToPlainTextHeadingsAndBullets(t *testing.T) {
	in := "<h2>Service Change</h2><ul><li>Route [A] trains skip 145 St</li><li>Use [C] instead</li></ul>"
	out := htmlToPlainText(in)

	assert.True(t, strings.Contains(out, "## Service Change"))
	assert.True(t, strings.Contains(out, "- Route [A] trains skip 145 St"))
	assert.True(t, strings.Contains(out, "- Use [C] instead"))
}

func TestHTMLToPlainTextCodeBlockAndEntities(t *testing.T) {
	in := "<p>Delay &amp; reroute</p><pre>7:00am &lt;&gt; 9:00am</pre>"
	out := htmlToPlainText(in)

	assert.True(t, strings.Contains(out, "Delay & reroute"))
	assert.True(t, strings.Contains(out, "```"))
	assert.True(t, strings.Contains(out, "7:00am <> 9:00am"))
}

func TestHTMLToPlainTextCollapsesBlankRuns(t *testing.T) {
	out := collapseBlankLines("one\n\n\n\n\ntwo")
	assert.Equal(t, "one\n\ntwo", out)
}

func TestHTMLToPlainTextEmptyInput(t *testing.T) {
	assert.Equal(t, "", htmlToPlainText(""))
	assert.Equal(t, "", htmlToPlainText("   "))
}
