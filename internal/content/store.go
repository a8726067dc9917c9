// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package content

import (
	"github.com/samber/oops"
)

type mapDifficultyKey struct {
	mapID      uint32
	difficulty Difficulty
}

type playerKey struct {
	race, class uint8
}

// Store is the indexed, read-only view over a content File. It is safe for
// concurrent readers.
type Store struct {
	maxLevel        uint8
	maps            map[uint32]MapInfo
	difficulties    map[Difficulty]DifficultyInfo
	mapDifficulties map[mapDifficultyKey]MapDifficulty
	items           map[uint32]ItemTemplate
	heirlooms       map[uint32]HeirloomInfo
	quests          map[uint32]QuestTemplate
	spells          map[uint32]SpellInfo
	skills          map[uint32]SkillInfo
	currencies      map[uint32]CurrencyInfo
	talents         map[uint32]TalentInfo
	races           map[uint8]RaceInfo
	classes         map[uint8]ClassInfo
	playerCreate    map[playerKey]PlayerCreateInfo
	taxiNodes       map[uint32]TaxiNode
	access          map[mapDifficultyKey]AccessRequirement
	illusions       map[uint32]struct{}
}

// New indexes f. Access requirement conditions are compiled here, so a
// malformed expression fails the whole load.
func New(f *File) (*Store, error) {
	s := &Store{
		maxLevel:        f.MaxLevel,
		maps:            indexBy(f.Maps, func(m MapInfo) uint32 { return m.ID }),
		difficulties:    indexBy(f.Difficulties, func(d DifficultyInfo) Difficulty { return d.ID }),
		mapDifficulties: indexBy(f.MapDifficulties, func(d MapDifficulty) mapDifficultyKey { return mapDifficultyKey{d.Map, d.Difficulty} }),
		items:           indexBy(f.Items, func(i ItemTemplate) uint32 { return i.ID }),
		heirlooms:       indexBy(f.Heirlooms, func(h HeirloomInfo) uint32 { return h.Item }),
		quests:          indexBy(f.Quests, func(q QuestTemplate) uint32 { return q.ID }),
		spells:          indexBy(f.Spells, func(sp SpellInfo) uint32 { return sp.ID }),
		skills:          indexBy(f.Skills, func(sk SkillInfo) uint32 { return sk.ID }),
		currencies:      indexBy(f.Currencies, func(c CurrencyInfo) uint32 { return c.ID }),
		talents:         indexBy(f.Talents, func(t TalentInfo) uint32 { return t.ID }),
		races:           indexBy(f.Races, func(r RaceInfo) uint8 { return r.ID }),
		classes:         indexBy(f.Classes, func(c ClassInfo) uint8 { return c.ID }),
		playerCreate:    indexBy(f.PlayerCreate, func(p PlayerCreateInfo) playerKey { return playerKey{p.Race, p.Class} }),
		taxiNodes:       indexBy(f.TaxiNodes, func(n TaxiNode) uint32 { return n.ID }),
		access:          make(map[mapDifficultyKey]AccessRequirement, len(f.AccessRequirements)),
		illusions:       make(map[uint32]struct{}, len(f.TransmogIllusions)),
	}
	for _, req := range f.AccessRequirements {
		if req.Condition != "" {
			cond, err := ParseCondition(req.Condition)
			if err != nil {
				return nil, oops.
					With("map", req.Map).
					With("difficulty", req.Difficulty).
					Wrap(err)
			}
			req.compiled = cond
		}
		s.access[mapDifficultyKey{req.Map, req.Difficulty}] = req
	}
	for _, id := range f.TransmogIllusions {
		s.illusions[id] = struct{}{}
	}
	for _, md := range f.MapDifficulties {
		if _, ok := s.maps[md.Map]; !ok {
			return nil, oops.Code("CONTENT_REFERENCE_INVALID").
				With("map", md.Map).
				Errorf("map difficulty references unknown map")
		}
		if _, ok := s.difficulties[md.Difficulty]; !ok {
			return nil, oops.Code("CONTENT_REFERENCE_INVALID").
				With("difficulty", md.Difficulty).
				Errorf("map difficulty references unknown difficulty")
		}
	}
	return s, nil
}

func indexBy[K comparable, V any](rows []V, key func(V) K) map[K]V {
	m := make(map[K]V, len(rows))
	for _, r := range rows {
		m[key(r)] = r
	}
	return m
}

func lookup[K comparable, V any](m map[K]V, k K) (V, bool) {
	v, ok := m[k]
	return v, ok
}

// MaxLevel returns the level cap.
func (s *Store) MaxLevel() uint8 { return s.maxLevel }

// Map looks up a map.
func (s *Store) Map(id uint32) (MapInfo, bool) { return lookup(s.maps, id) }

// Difficulty looks up a difficulty.
func (s *Store) Difficulty(id Difficulty) (DifficultyInfo, bool) { return lookup(s.difficulties, id) }

// MapDifficulty looks up the settings of a difficulty on a map. A missing
// entry means the difficulty is unavailable there.
func (s *Store) MapDifficulty(mapID uint32, d Difficulty) (MapDifficulty, bool) {
	return lookup(s.mapDifficulties, mapDifficultyKey{mapID, d})
}

// IsHeroic reports whether d is a heroic difficulty.
func (s *Store) IsHeroic(d Difficulty) bool {
	info, ok := s.difficulties[d]
	return ok && info.Heroic
}

// Item looks up an item template.
func (s *Store) Item(id uint32) (ItemTemplate, bool) { return lookup(s.items, id) }

// Heirloom looks up the heirloom entry of an item.
func (s *Store) Heirloom(item uint32) (HeirloomInfo, bool) { return lookup(s.heirlooms, item) }

// Quest looks up a quest template.
func (s *Store) Quest(id uint32) (QuestTemplate, bool) { return lookup(s.quests, id) }

// Spell looks up a spell.
func (s *Store) Spell(id uint32) (SpellInfo, bool) { return lookup(s.spells, id) }

// Skill looks up a skill line.
func (s *Store) Skill(id uint32) (SkillInfo, bool) { return lookup(s.skills, id) }

// Currency looks up a currency.
func (s *Store) Currency(id uint32) (CurrencyInfo, bool) { return lookup(s.currencies, id) }

// Talent looks up a talent.
func (s *Store) Talent(id uint32) (TalentInfo, bool) { return lookup(s.talents, id) }

// Race looks up a race.
func (s *Store) Race(id uint8) (RaceInfo, bool) { return lookup(s.races, id) }

// Class looks up a class.
func (s *Store) Class(id uint8) (ClassInfo, bool) { return lookup(s.classes, id) }

// PlayerCreate looks up the start data of a race and class pair.
func (s *Store) PlayerCreate(race, class uint8) (PlayerCreateInfo, bool) {
	return lookup(s.playerCreate, playerKey{race, class})
}

// TaxiNode looks up a flight master node.
func (s *Store) TaxiNode(id uint32) (TaxiNode, bool) { return lookup(s.taxiNodes, id) }

// AccessRequirement looks up the entry requirement of a map and difficulty.
func (s *Store) AccessRequirement(mapID uint32, d Difficulty) (AccessRequirement, bool) {
	return lookup(s.access, mapDifficultyKey{mapID, d})
}

// IsIllusion reports whether id is a known transmog illusion.
func (s *Store) IsIllusion(id uint32) bool {
	_, ok := s.illusions[id]
	return ok
}

// Summary counts the rows of each table.
type Summary struct {
	Maps, Difficulties, MapDifficulties, Items, Quests, Spells int
	Skills, Currencies, Talents, Races, Classes, AccessRules   int
}

// Summary returns the table sizes.
func (s *Store) Summary() Summary {
	return Summary{
		Maps:            len(s.maps),
		Difficulties:    len(s.difficulties),
		MapDifficulties: len(s.mapDifficulties),
		Items:           len(s.items),
		Quests:          len(s.quests),
		Spells:          len(s.spells),
		Skills:          len(s.skills),
		Currencies:      len(s.currencies),
		Talents:         len(s.talents),
		Races:           len(s.races),
		Classes:         len(s.classes),
		AccessRules:     len(s.access),
	}
}
