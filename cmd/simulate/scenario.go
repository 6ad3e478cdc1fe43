package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/grid"
)

// scenarioFile is the YAML shape of a simulation scenario: grid dimensions,
// impassable cells, and the participant roster.
type scenarioFile struct {
	Name    string `yaml:"name"`
	Terrain struct {
		Width   int `yaml:"width"`
		Height  int `yaml:"height"`
		Blocked []struct {
			X int `yaml:"x"`
			Y int `yaml:"y"`
		} `yaml:"blocked"`
	} `yaml:"terrain"`
	Participants []scenarioParticipant `yaml:"participants"`
}

type scenarioParticipant struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Faction string `yaml:"faction"`
	Level   int    `yaml:"level"`

	Might     int `yaml:"might"`
	Intellect int `yaml:"intellect"`
	Will      int `yaml:"will"`
	Shadow    int `yaml:"shadow"`

	MaxHealth int `yaml:"max_health"`
	MaxMana   int `yaml:"max_mana"`
	MaxAP     int `yaml:"max_ap"`

	Armor           int `yaml:"armor"`
	InitiativeBonus int `yaml:"initiative_bonus"`
	MoveSpeed       int `yaml:"move_speed"`
	Corruption      int `yaml:"corruption"`

	X int `yaml:"x"`
	Y int `yaml:"y"`

	Control string `yaml:"control"`
	Profile string `yaml:"profile"`
}

// loadScenario parses a scenario file into participants and terrain ready
// for session.Manager.CreateEncounter.
func loadScenario(path string) (string, []*actor.Participant, *grid.Terrain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	var file scenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return "", nil, nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	if file.Terrain.Width <= 0 || file.Terrain.Height <= 0 {
		return "", nil, nil, fmt.Errorf("scenario %s: terrain must have positive dimensions", path)
	}
	terrain := grid.NewTerrain(file.Terrain.Width, file.Terrain.Height)
	for _, b := range file.Terrain.Blocked {
		terrain.SetCost(grid.Point{X: b.X, Y: b.Y}, 0)
	}

	if len(file.Participants) == 0 {
		return "", nil, nil, fmt.Errorf("scenario %s: no participants", path)
	}
	participants := make([]*actor.Participant, 0, len(file.Participants))
	for _, sp := range file.Participants {
		p, err := sp.toParticipant()
		if err != nil {
			return "", nil, nil, fmt.Errorf("scenario %s: %w", path, err)
		}
		participants = append(participants, p)
	}
	return file.Name, participants, terrain, nil
}

func (sp scenarioParticipant) toParticipant() (*actor.Participant, error) {
	faction, err := parseFaction(sp.Faction)
	if err != nil {
		return nil, fmt.Errorf("participant %q: %w", sp.ID, err)
	}
	control := actor.ControlAI
	switch sp.Control {
	case "", "ai":
	case "player":
		control = actor.ControlPlayer
	default:
		return nil, fmt.Errorf("participant %q: unknown control %q", sp.ID, sp.Control)
	}

	moveSpeed := sp.MoveSpeed
	if moveSpeed == 0 {
		moveSpeed = 2
	}
	p := &actor.Participant{
		ID:      sp.ID,
		Name:    sp.Name,
		Faction: faction,
		Level:   sp.Level,
		Attr: actor.Attributes{
			Might:     sp.Might,
			Intellect: sp.Intellect,
			Will:      sp.Will,
			Shadow:    sp.Shadow,
		},
		Health:          sp.MaxHealth,
		MaxHealth:       sp.MaxHealth,
		Mana:            sp.MaxMana,
		MaxMana:         sp.MaxMana,
		AP:              sp.MaxAP,
		MaxAP:           sp.MaxAP,
		Armor:           sp.Armor,
		InitiativeBonus: sp.InitiativeBonus,
		MoveSpeed:       moveSpeed,
		Pos:             grid.Point{X: sp.X, Y: sp.Y},
		Cooldowns:       make(map[string]int),
		Corruption:      sp.Corruption,
		Control:         control,
		ProfileID:       sp.Profile,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func parseFaction(s string) (actor.Faction, error) {
	switch s {
	case "player":
		return actor.FactionPlayer, nil
	case "ally":
		return actor.FactionAlly, nil
	case "enemy":
		return actor.FactionEnemy, nil
	default:
		return 0, fmt.Errorf("unknown faction %q", s)
	}
}
