package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const collisionScript = `First: STOP THE CAR AND TURN ON YOUR HAZARDS.
Check yourself and passengers for injuries; call 112 if anyone is hurt.
Put out the warning triangle at least 15 meters behind the car.
Do not move the vehicles until you have photos of the scene from several angles.
Exchange names, phone numbers, and insurance details with the other driver.
Call your insurer's accident line before agreeing to anything.`

const breakdownScript = `First: PULL OVER TO A SAFE SPOT AND TURN ON YOUR HAZARDS.
Put out the warning triangle at least 15 meters behind the car.
Stay out of the traffic lane; on a highway, wait behind the barrier.
If the engine overheats or you smell fuel, do not restart it.
Call roadside assistance; tell them your location, the car model, and what happened.`

// SOS returns the fixed roadside emergency checklist. It is fully offline so
// it works when everything else is down.
type SOS struct{}

// NewSOS creates the emergency skill.
func NewSOS() *SOS { return &SOS{} }

func (s *SOS) Name() string { return "sos_help" }
func (s *SOS) Description() string {
	return "Step-by-step instructions for a roadside emergency: breakdown or collision"
}
func (s *SOS) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"situation": {"type": "string", "description": "Short description of what happened"}
		}
	}`)
}

func (s *SOS) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Situation string `json:"situation"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
	}

	if containsAny(strings.ToLower(params.Situation), "crash", "collision", "accident", "hit") {
		return collisionScript, nil
	}
	return breakdownScript, nil
}
