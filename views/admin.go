package views

import (
	"github.com/AdamBeresnev/tennis-fun/internal/service"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
)

type AdminData struct {
	Flash  string
	Error  string
	Active []tournament.Summary
	Form   service.NewTournament
}

// formGroup returns the submitted values for group n, or an empty group.
func (d AdminData) formGroup(n int) service.GroupForm {
	for _, g := range d.Form.Groups {
		if g.Number == n {
			return g
		}
	}
	return service.GroupForm{Number: n}
}
