package dispatch

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"

	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// idempotencyCacheSize bounds the retry window. A client that retries a
// request_id older than this re-executes the command.
const idempotencyCacheSize = 4096

// envelope is the wire fields common to every command.
type envelope struct {
	Command          string `json:"command"`
	RequestID        string `json:"request_id,omitempty"`
	CharacterID      string `json:"character_id,omitempty"`
	ActorCharacterID string `json:"actor_character_id,omitempty"`
	AdminPassword    string `json:"admin_password,omitempty"`
}

// Dispatcher is the single entry point for external commands. It parses
// the envelope, authorizes the actor, runs the shared pre-checks, takes
// the character lock and forwards the typed request to its handler.
type Dispatcher struct {
	mediator      common.Mediator
	locks         *locks.Manager
	combat        *appcombat.Manager
	bus           *appevents.Bus
	characters    world.CharacterRepository
	ships         world.ShipRepository
	corporations  world.CorporationRepository
	adminPassword string
	registry      map[string]commandSpec
	cache         *responseCache
}

// NewDispatcher creates a dispatcher over the full command registry.
func NewDispatcher(
	mediator common.Mediator,
	lockManager *locks.Manager,
	combatManager *appcombat.Manager,
	bus *appevents.Bus,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	corporations world.CorporationRepository,
	adminPassword string,
) *Dispatcher {
	return &Dispatcher{
		mediator:      mediator,
		locks:         lockManager,
		combat:        combatManager,
		bus:           bus,
		characters:    characters,
		ships:         ships,
		corporations:  corporations,
		adminPassword: adminPassword,
		registry:      defaultRegistry(),
		cache:         newResponseCache(idempotencyCacheSize),
	}
}

// Dispatch executes one raw command frame and returns the response
// envelope. Failures are encoded, never returned as errors; the caller
// always has something to send back.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) map[string]interface{} {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return failureEnvelope(shared.NewValidationError("command", "malformed request"))
	}
	spec, ok := d.registry[env.Command]
	if !ok {
		return failureEnvelope(shared.NewValidationError("command", "unknown command "+env.Command))
	}

	if env.RequestID != "" {
		if cached, hit := d.cache.get(env.CharacterID, env.RequestID); hit {
			return cached
		}
	}

	response := d.execute(ctx, raw, &env, spec)

	if env.RequestID != "" {
		d.cache.put(env.CharacterID, env.RequestID, response)
	}
	if response["success"] == false {
		d.emitError(ctx, &env, response)
	}
	return response
}

func (d *Dispatcher) execute(ctx context.Context, raw []byte, env *envelope, spec commandSpec) map[string]interface{} {
	request := spec.make()
	if err := json.Unmarshal(raw, request); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return failureEnvelope(shared.NewTypeError(typeErr.Field, "expected "+typeErr.Type.String()))
		}
		return failureEnvelope(shared.NewValidationError("command", "malformed request"))
	}

	if err := d.authorize(ctx, env, spec); err != nil {
		return failureEnvelope(err)
	}
	if err := d.precheck(ctx, env, spec); err != nil {
		return failureEnvelope(err)
	}

	// The character lock is the outermost lock of every command touching a
	// character; it serializes commands from the same client.
	if env.CharacterID != "" {
		guard, err := d.locks.Acquire(ctx, locks.CharacterKey(env.CharacterID))
		if err != nil {
			return failureEnvelope(err)
		}
		defer guard.Release()
	}

	result, err := d.mediator.Send(ctx, request)
	if err != nil {
		return failureEnvelope(err)
	}
	if env.Command == "test_reset" {
		d.cache.reset()
	}
	return successEnvelope(env, result)
}

// authorize enforces actor == character, corp-ship control, or admin
// credentials.
func (d *Dispatcher) authorize(ctx context.Context, env *envelope, spec commandSpec) error {
	admin := d.adminPassword != "" && env.AdminPassword != "" &&
		subtle.ConstantTimeCompare([]byte(env.AdminPassword), []byte(d.adminPassword)) == 1
	if env.AdminPassword != "" && !admin {
		return shared.NewAuthorizationError("admin password rejected")
	}
	if spec.adminOnly {
		if !admin {
			return shared.NewAuthorizationError("admin credentials required")
		}
		return nil
	}
	if admin {
		return nil
	}

	actor := env.ActorCharacterID
	if actor == "" || actor == env.CharacterID {
		return nil
	}
	if spec.ownerOrAdmin {
		return shared.NewAuthorizationError("only the character or an admin may run this")
	}

	// Corp-ship control: a member may act for a corporation_ship character
	// whose ship their corporation owns.
	target, err := d.characters.FindByID(ctx, env.CharacterID)
	if err != nil {
		return err
	}
	if target.Kind != world.CharacterKindCorporationShip {
		return shared.NewAuthorizationError("actor cannot act for this character")
	}
	ship, err := d.ships.FindByID(ctx, target.ShipID)
	if err != nil {
		return err
	}
	if ship.OwnerKind != world.ShipOwnerCorporation {
		return shared.NewAuthorizationError("actor cannot act for this character")
	}
	corp, err := d.corporations.FindByID(ctx, ship.OwnerID)
	if err != nil {
		return err
	}
	if !corp.IsMember(actor) {
		return shared.NewAuthorizationError("actor is not a member of the owning corporation")
	}
	return nil
}

// precheck applies the invariants shared by most commands: the character
// exists, is not mid-warp, and is not in combat unless the command is
// combat-aware.
func (d *Dispatcher) precheck(ctx context.Context, env *envelope, spec commandSpec) error {
	if spec.noCharacter {
		return nil
	}
	if env.CharacterID == "" {
		return shared.NewValidationError("character_id", "must not be empty")
	}
	character, err := d.characters.FindByID(ctx, env.CharacterID)
	if err != nil {
		return err
	}
	if character.InHyperspace && !spec.hyperspaceOK {
		return shared.NewConflictError("character is in hyperspace")
	}
	if !spec.combatAllowed && d.combat.FindEncounterFor(character.ID) != nil {
		return shared.NewConflictError("character is in combat")
	}
	return nil
}

// emitError fans the failure to the actor so agents watching the event
// stream see rejected commands without correlating RPC responses.
func (d *Dispatcher) emitError(ctx context.Context, env *envelope, response map[string]interface{}) {
	recipient := env.ActorCharacterID
	if recipient == "" {
		recipient = env.CharacterID
	}
	if recipient == "" {
		return
	}
	if err := d.bus.Emit(ctx, events.Event{
		Name: events.Error,
		Payload: map[string]interface{}{
			"command": env.Command,
			"status":  response["status"],
			"detail":  response["detail"],
			"code":    response["code"],
		},
		Filter: events.ToCharacters(recipient),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.Error,
			"error": err.Error(),
		})
	}
}

func successEnvelope(env *envelope, result common.Response) map[string]interface{} {
	out := map[string]interface{}{
		"success": true,
		"command": env.Command,
		"result":  result,
	}
	if env.RequestID != "" {
		out["request_id"] = env.RequestID
	}
	return out
}

func failureEnvelope(err error) map[string]interface{} {
	out := map[string]interface{}{
		"success": false,
		"status":  shared.StatusOf(err),
		"detail":  err.Error(),
	}
	if code := shared.CodeOf(err); code != "" && code != "internal" {
		out["code"] = code
	}
	return out
}
