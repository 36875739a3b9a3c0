package views

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/tennis-fun/internal/middleware"
	"github.com/AdamBeresnev/tennis-fun/internal/service"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
)

func render(t *testing.T, isAdmin bool, c templ.Component) *goquery.Document {
	t.Helper()
	ctx := context.WithValue(context.Background(), middleware.AdminKey, isAdmin)
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestBoardPageAdmin(t *testing.T) {
	tour, results := groupStage()
	data := PrepareBoardData(tour, results, tournament.ReconcileSlots(nil, tour), false, true)
	data.Version = 7

	doc := render(t, true, BoardPage(data, "", "", true))

	board := doc.Find("#board")
	assert.Equal(t, "7", board.AttrOr("data-version", ""))
	assert.Equal(t, "true", board.AttrOr("data-live", ""))
	assert.Equal(t, "Autumn Cup", doc.Find("h1").First().Text())

	assert.Equal(t, 3, doc.Find("#groups .standings tbody tr").Length())
	assert.Equal(t, 3, doc.Find("#groups a.report").Length())
	assert.Equal(t, "Semifinals", doc.Find("#knockout .round h3").First().Text())
	assert.Equal(t, 2, doc.Find("#knockout p.slot-empty").Length())
	assert.Equal(t, 4, doc.Find("#knockout .tbd").Length())

	assert.Equal(t, 3, doc.Find("#ranking form.place").Length())
	assert.Equal(t, "Anna", doc.Find("#ranking form.place input[name=player]").First().AttrOr("value", ""))
	assert.Equal(t, 0, doc.Find("#next-round").Length())
	assert.Equal(t, 1, doc.Find("nav a[href='/admin']").Length())
}

func TestBoardPageSpectator(t *testing.T) {
	tour, results := groupStage()
	data := PrepareBoardData(tour, results, tournament.ReconcileSlots(nil, tour), false, false)

	doc := render(t, false, BoardPage(data, "", "", true))

	assert.Equal(t, 0, doc.Find("a.report").Length())
	assert.Equal(t, 0, doc.Find("form.place").Length())
	assert.Equal(t, 0, doc.Find("nav a[href='/admin']").Length())
	assert.Equal(t, 1, doc.Find("nav a[href='/login']").Length())
}

func TestBoardPageArchived(t *testing.T) {
	tour, results := groupStage()
	data := PrepareBoardData(tour, results, nil, true, true)

	doc := render(t, true, BoardPage(data, "", "", false))

	assert.Equal(t, "false", doc.Find("#board").AttrOr("data-live", ""))
	assert.Contains(t, doc.Find(".date").Text(), "archived")
	assert.Equal(t, 0, doc.Find("a.report").Length())
}

func TestBoardPageSemifinals(t *testing.T) {
	tour, results := semifinalStage()
	data := PrepareBoardData(tour, results, tournament.ReconcileSlots(nil, tour), false, true)

	doc := render(t, true, BoardPage(data, "", "", true))

	assert.Equal(t, "Winner of match 1 / Winner of match 2", doc.Find(".knockout .hint").First().Text())
	assert.Equal(t, 8, doc.Find("#candidates form.place").Length())
	assert.Equal(t, 4, doc.Find("#candidates .winner").Length())
	assert.True(t, doc.Find("#knockout .round.active").Length() == 1)
}

func TestBoardPageEscapesNames(t *testing.T) {
	tour, results := groupStage()
	tour.Groups[0].Participants[0] = "<script>alert(1)</script>"
	data := PrepareBoardData(tour, results, nil, false, false)

	var buf bytes.Buffer
	require.NoError(t, BoardPage(data, "", "", true).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;alert(1)&lt;/script&gt;")
}

func TestBoardPageNoTournament(t *testing.T) {
	doc := render(t, false, BoardPage(PrepareBoardData(nil, nil, nil, false, false), "", "", true))
	assert.Equal(t, 1, doc.Find("#no-tournament").Length())
}

func TestBoardPageNextRoundPlayerCount(t *testing.T) {
	tour, results := groupStage()
	tour.Groups = tour.Groups[:1]
	data := PrepareBoardData(tour, results, nil, false, true)

	doc := render(t, true, BoardPage(data, "", "", true))

	options := doc.Find("#next-round select[name=numberOfPlayers] option")
	require.Equal(t, 1, options.Length())
	assert.Equal(t, "2", options.AttrOr("value", ""))
	assert.Contains(t, options.Text(), "Final")
}

func TestReportPage(t *testing.T) {
	existing := played(1, "Bo", "Anna", 1, 4)
	f := ReportFormFor(1, "Anna", "Bo", &existing)

	doc := render(t, true, ReportPage(f))

	assert.Equal(t, "Edit result", doc.Find("h1").Text())
	assert.Equal(t, "/ongoing/groups/1/report", doc.Find("form#report").AttrOr("action", ""))
	assert.Equal(t, "4", doc.Find("input[name=score1]").AttrOr("value", ""))
	assert.Equal(t, "1", doc.Find("input[name=score2]").AttrOr("value", ""))
	assert.Equal(t, "Anna", doc.Find("input[name=winner][checked]").AttrOr("value", ""))
	assert.Equal(t, "PLAYED", doc.Find("select[name=status] option[selected]").AttrOr("value", ""))
}

func TestAdminPage(t *testing.T) {
	data := AdminData{
		Error:  "group 2: a group needs at least 3 players",
		Active: []tournament.Summary{{ID: 4, Name: "Autumn Cup", Date: "2026-10-18"}},
		Form: service.NewTournament{
			Name:   "Autumn Cup",
			Groups: []service.GroupForm{{Number: 2, Participants: []string{"Anna", "Bo"}, Court1: "B3"}},
		},
	}

	doc := render(t, true, AdminPage(data))

	assert.Equal(t, service.GroupCount, doc.Find("#create fieldset.group").Length())
	assert.Equal(t, "Anna\nBo", doc.Find("textarea[name=group_2_participants]").Text())
	assert.Equal(t, "B3", doc.Find("select[name=group_2_court1] option[selected]").AttrOr("value", ""))
	assert.Equal(t, "Autumn Cup", doc.Find("input[name=name]").AttrOr("value", ""))
	assert.Contains(t, doc.Find(".error").Text(), "at least 3 players")
	assert.Equal(t, "/admin/tournaments/4/archive", doc.Find("#active form").First().AttrOr("action", ""))
}

func TestArchivePage(t *testing.T) {
	archived := []tournament.Summary{{ID: 9, Name: "Spring <Open>", Date: "2026-04-12", GroupCount: 3, ParticipantCount: 12}}

	testCases := []struct {
		name    string
		isAdmin bool
		forms   int
	}{
		{name: "admin can delete", isAdmin: true, forms: 1},
		{name: "spectator only reads", isAdmin: false, forms: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := render(t, tc.isAdmin, ArchivePage(archived, tc.isAdmin, ""))

			link := doc.Find("#archived a").First()
			assert.Equal(t, "/archive/9", link.AttrOr("href", ""))
			assert.Equal(t, "Spring <Open>", link.Text())
			assert.Equal(t, tc.forms, doc.Find("#archived form[action='/admin/tournaments/9/delete']").Length())
		})
	}
}

func TestLayoutMenu(t *testing.T) {
	doc := render(t, true, Landing(nil, "Logged in"))

	assert.Equal(t, "Tennis Fun", doc.Find("h1").Text())
	assert.Equal(t, "Logged in", doc.Find(".flash").Text())
	assert.Equal(t, 1, doc.Find("#no-active").Length())
	assert.Equal(t, 1, doc.Find("nav form[action='/logout']").Length())
	assert.Contains(t, doc.Find("title").Text(), "Home")
}
