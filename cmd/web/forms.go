package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/AdamBeresnev/tennis-fun/internal/service"
)

const maxParticipantFile = 64 << 10

// parseTournamentForm reads the create form. Players come from the group's
// text area, followed by the lines of an uploaded file when one was sent.
func parseTournamentForm(r *http.Request) (service.NewTournament, error) {
	form := service.NewTournament{
		Name: r.FormValue("name"),
		Date: r.FormValue("date"),
	}

	for n := 1; n <= service.GroupCount; n++ {
		g := service.GroupForm{
			Number:       n,
			Participants: service.ParseParticipants(r.FormValue(fmt.Sprintf("group_%d_participants", n))),
			Court1:       r.FormValue(fmt.Sprintf("group_%d_court1", n)),
			Court2:       r.FormValue(fmt.Sprintf("group_%d_court2", n)),
		}

		uploaded, err := readParticipantFile(r, fmt.Sprintf("group_%d_file", n))
		if err != nil {
			return form, fmt.Errorf("group %d: %w", n, err)
		}
		g.Participants = append(g.Participants, uploaded...)

		form.Groups = append(form.Groups, g)
	}
	return form, nil
}

func readParticipantFile(r *http.Request, field string) ([]string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	f, err := r.MultipartForm.File[field][0].Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxParticipantFile))
	if err != nil {
		return nil, err
	}
	return service.ParseParticipants(string(data)), nil
}
