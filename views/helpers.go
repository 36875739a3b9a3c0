package views

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/AdamBeresnev/tennis-fun/internal/service"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
)

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f5f7f4;color:#1d2a1d}
nav{display:flex;gap:1rem;align-items:center;padding:.75rem 1.5rem;background:#2f5d31}
nav a,nav button{color:#fff;text-decoration:none;background:none;border:0;font:inherit;cursor:pointer}
nav form{margin-left:auto}
main{padding:1.5rem;max-width:1200px;margin:0 auto}
table{border-collapse:collapse;margin-bottom:1rem}
th,td{border:1px solid #c9d3c6;padding:.25rem .5rem;text-align:left}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(320px,1fr));gap:1rem}
.card{background:#fff;border:1px solid #c9d3c6;border-radius:6px;padding:1rem}
.flash{background:#e3f1e0;padding:.5rem 1rem;border-radius:4px}
.error{background:#f8dede;padding:.5rem 1rem;border-radius:4px}
.rounds{display:flex;gap:1rem;overflow-x:auto}
.round{min-width:220px}
.round.active h3{text-decoration:underline}
.tbd{color:#777}
.winner{font-weight:bold}
.placed{color:#999;text-decoration:line-through}
.candidate{cursor:pointer}`

// liveScript reloads the page when the board version moves on and turns a
// double click on a candidate into a placement.
const liveScript = `<script>
(function () {
  document.querySelectorAll("form.place button").forEach(function (b) {
    b.addEventListener("click", function (e) { e.preventDefault(); });
    b.addEventListener("dblclick", function () { b.form.submit(); });
  });
  var board = document.getElementById("board");
  if (!board || board.dataset.live !== "true") { return; }
  var version = board.dataset.version;
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function (e) {
      try {
        var ev = JSON.parse(e.data);
        if (ev.type === "board_updated" && String(ev.version) !== version) { location.reload(); }
      } catch (_) {}
    };
    ws.onclose = function () { setTimeout(connect, 3000); };
  }
  connect();
})();
</script>`

var reportStatuses = []tournament.MatchStatus{tournament.StatusPlayed, tournament.StatusWalkover, tournament.StatusRetired}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func tournamentAction(id int64, action string) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/admin/tournaments/%d/%s", id, action))
}

func groupAction(id int64, action string) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/ongoing/groups/%d/%s", id, action))
}

func reportURL(m MatchRow) templ.SafeURL {
	q := url.Values{}
	q.Set("player1", m.Player1)
	q.Set("player2", m.Player2)
	return templ.URL(fmt.Sprintf("/ongoing/groups/%d/report?%s", m.GroupID, q.Encode()))
}

func boardTitle(data BoardData) string {
	if data.Tournament == nil {
		return "Ongoing"
	}
	return data.Tournament.Name
}

func winnerOf(m MatchRow) string {
	if m.Result == nil {
		return ""
	}
	return m.Result.Winner
}

func reportLabel(m MatchRow) string {
	if m.Reported() {
		return "Edit"
	}
	return "Report"
}

func candidateClass(c CandidateView) string {
	class := ""
	if c.Winner {
		class = "winner"
	}
	if c.Placed {
		class += " placed"
	}
	return strings.TrimSpace(class)
}

func placedClass(placed bool) string {
	if placed {
		return "placed"
	}
	return ""
}

func signed(n int) string {
	return fmt.Sprintf("%+d", n)
}

func groupNumbers() []int {
	numbers := make([]int, service.GroupCount)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

func groupField(n int, field string) string {
	return fmt.Sprintf("group_%d_%s", n, field)
}

func playerCounts(ranked int) []int {
	var counts []int
	for n := 2; n <= ranked; n += 2 {
		counts = append(counts, n)
	}
	return counts
}
