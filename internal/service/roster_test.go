package service

import (
	"testing"

	"github.com/AdamBeresnev/tennis-fun/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParticipants(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "unix lines", input: "Anna\nBo\nCecilia", expected: []string{"Anna", "Bo", "Cecilia"}},
		{name: "windows lines and blanks", input: "Anna\r\n\r\n  Bo  \r\n", expected: []string{"Anna", "Bo"}},
		{name: "old mac lines", input: "Anna\rBo", expected: []string{"Anna", "Bo"}},
		{name: "byte order mark", input: "\ufeffÅsa\nÖrjan", expected: []string{"Åsa", "Örjan"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseParticipants(tc.input))
		})
	}
}

func TestBuildCreateRequest(t *testing.T) {
	valid := func() NewTournament {
		return NewTournament{
			Name: " Autumn Cup ",
			Date: "2025-10-04",
			Groups: []GroupForm{
				{Number: 1, Participants: []string{"A", "B", "C"}, Court1: "B1", Court2: "B2"},
				{Number: 2},
				{Number: 3, Participants: []string{"D", "E", "F", "G"}},
			},
		}
	}

	req, err := BuildCreateRequest(valid())
	require.NoError(t, err)
	assert.Equal(t, "Autumn Cup", req.Name)
	require.Len(t, req.Groups, 2, "empty groups are left out")
	assert.Equal(t, 1, req.Groups[0].GroupNumber)
	assert.Equal(t, "B1", utils.OrZero(req.Groups[0].Court1))
	assert.Nil(t, req.Groups[1].Court1)
	assert.Equal(t, 3, req.Groups[1].GroupNumber)

	empties := valid()
	empties.Groups = append(empties.Groups, GroupForm{Number: 1})
	_, err = BuildCreateRequest(empties)
	assert.NoError(t, err, "an empty group does not claim its number")

	testCases := []struct {
		name   string
		mutate func(in *NewTournament)
		err    error
	}{
		{name: "missing name", mutate: func(in *NewTournament) { in.Name = "  " }, err: ErrNameRequired},
		{name: "missing date", mutate: func(in *NewTournament) { in.Date = "" }, err: ErrDateRequired},
		{name: "bad date", mutate: func(in *NewTournament) { in.Date = "04/10/2025" }, err: ErrInvalidDate},
		{name: "no players", mutate: func(in *NewTournament) { in.Groups = []GroupForm{{Number: 1}} }, err: ErrNoParticipants},
		{name: "two players", mutate: func(in *NewTournament) { in.Groups[0].Participants = []string{"A", "B"} }, err: ErrGroupTooSmall},
		{
			name:   "six players",
			mutate: func(in *NewTournament) { in.Groups[0].Participants = []string{"A", "B", "C", "H", "I", "J"} },
			err:    ErrGroupTooLarge,
		},
		{name: "player in two groups", mutate: func(in *NewTournament) { in.Groups[2].Participants[0] = "a" }, err: ErrDuplicatePlayer},
		{name: "unknown court", mutate: func(in *NewTournament) { in.Groups[0].Court2 = "C9" }, err: ErrUnknownCourt},
		{name: "group ten", mutate: func(in *NewTournament) { in.Groups[2].Number = 10 }, err: ErrUnknownGroupNumber},
		{name: "group number used twice", mutate: func(in *NewTournament) { in.Groups[2].Number = 1 }, err: ErrDuplicateGroupNumber},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid()
			tc.mutate(&in)
			_, err := BuildCreateRequest(in)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
