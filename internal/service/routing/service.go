package routing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ocupmed/queue-api/internal/model"
)

// roomExams is the fixed exam membership table. An exam routes a
// patient to a room when its normalized name contains one of these
// terms. Terms are stored pre-normalized (lowercase, no diacritics).
var roomExams = map[model.Room][]string{
	model.RoomPhysician: {
		"exame clinico",
		"consulta",
		"aso",
		"avaliacao medica",
	},
	model.RoomExam: {
		"acuidade visual",
		"espirometria",
		"eletrocardiograma",
		"eletroencefalograma",
		"dinamometria",
	},
	model.RoomCollection: {
		"hemograma",
		"glicemia",
		"coleta",
		"urina",
		"sangue",
		"toxicologico",
	},
	model.RoomAudiometry: {
		"audiometria",
	},
	model.RoomXRay: {
		"raio-x",
		"raio x",
		"radiografia",
	},
}

// Service resolves the exam snapshot of a visit into initial room
// statuses. It is a pure mapping with no store access.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Resolve returns, for every room, waiting when at least one exam in
// the set belongs to that room and not_applicable otherwise. An empty
// set yields all rooms not_applicable. The result is independent of
// exam ordering.
func (s *Service) Resolve(exams []string) map[model.Room]model.RoomStatus {
	statuses := make(map[model.Room]model.RoomStatus, len(model.Rooms))
	for _, room := range model.Rooms {
		statuses[room] = model.RoomStatusNotApplicable
	}

	for _, exam := range exams {
		name := normalize(exam)
		if name == "" {
			continue
		}
		for room, terms := range roomExams {
			if statuses[room] == model.RoomStatusWaiting {
				continue
			}
			for _, term := range terms {
				if strings.Contains(name, term) {
					statuses[room] = model.RoomStatusWaiting
					break
				}
			}
		}
	}

	return statuses
}

// RoomFor returns the room a single exam routes to, if any.
func (s *Service) RoomFor(exam string) (model.Room, bool) {
	name := normalize(exam)
	for _, room := range model.Rooms {
		for _, term := range roomExams[room] {
			if strings.Contains(name, term) {
				return room, true
			}
		}
	}
	return "", false
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize lowercases and strips diacritics so "Audiometria" and
// "audiometría" compare equal.
func normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
