package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "Sep 29, 2019 1:00p.m.", CleanText("\n\t  Sep 29,  2019\n 1:00p.m. ​"))
	require.Equal(t, "", CleanText(" \n "))
}

func TestText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<li id="first">Sep 29, 2019<br>1:00p.m.-3:00p.m.<script>var x = 1;</script></li>
		<li>second</li>`))
	require.NoError(t, err)

	require.Equal(t, "Sep 29, 2019 1:00p.m.-3:00p.m.", Text(doc.Find("li")))
	require.Equal(t, "", Text(doc.Find("table")))
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<ul>
			<li><a title="Manage" href="/admin/events/spring-gala/details?tab=1">
				Spring   Gala
			</a></li>
			<li><a title="Manage" href="/admin/events/fall-fair/details">Fall <b>Fair</b></a></li>
			<li><a title="Manage">No link</a></li>
		</ul>`))
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("a[title=Manage]"))
	require.Equal(t, []Anchor{
		{Name: "Spring Gala", Href: "/admin/events/spring-gala/details?tab=1", Title: "Manage"},
		{Name: "Fall Fair", Href: "/admin/events/fall-fair/details", Title: "Manage"},
	}, anchors)
}
