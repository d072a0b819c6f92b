package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// PlotCourseCommand computes the shortest route between two sectors
type PlotCourseCommand struct {
	CharacterID string `json:"character_id"`
	FromSector  *int   `json:"from_sector,omitempty"`
	ToSector    int    `json:"to_sector"`
}

// PlotCourseResponse carries the computed route
type PlotCourseResponse struct {
	Path  []int
	Turns int
}

// PlotCourseHandler runs shortest-path search over the sector graph
type PlotCourseHandler struct {
	bus        *appevents.Bus
	universe   *world.Universe
	characters world.CharacterRepository
}

// NewPlotCourseHandler creates a new plot course handler
func NewPlotCourseHandler(bus *appevents.Bus, universe *world.Universe, characters world.CharacterRepository) *PlotCourseHandler {
	return &PlotCourseHandler{bus: bus, universe: universe, characters: characters}
}

// Handle executes the plot_course command
func (h *PlotCourseHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PlotCourseCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	origin := 0
	if cmd.FromSector != nil {
		origin = *cmd.FromSector
	} else {
		character, err := h.characters.FindByID(ctx, cmd.CharacterID)
		if err != nil {
			return nil, err
		}
		origin = character.SectorID
	}

	path, err := h.universe.PlotCourse(origin, cmd.ToSector)
	if err != nil {
		return nil, err
	}

	if err := h.bus.Emit(ctx, events.Event{
		Name: events.CoursePlot,
		Payload: map[string]interface{}{
			"from_sector": origin,
			"to_sector":   cmd.ToSector,
			"path":        path,
			"turns":       len(path) - 1,
		},
		Filter: events.ToCharacters(cmd.CharacterID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.CoursePlot,
			"error": err.Error(),
		})
	}

	return &PlotCourseResponse{Path: path, Turns: len(path) - 1}, nil
}
