package counts

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/weirdgloop/hiscorebot/internal/hiscores"
)

// Language is a wiki the counts module is published to. Each language
// carries its own module title, table and skill names, date rendering and
// number grouping, so no process-global locale state is ever touched.
type Language int

const (
	EN Language = iota
	PTBR
)

func (l Language) String() string {
	if l == PTBR {
		return "pt-br"
	}
	return "en"
}

// Module returns the title of the counts module on this language's wiki.
func (l Language) Module() string {
	if l == PTBR {
		return "Módulo:Contagem de Recordes"
	}
	return "Module:Hiscore counts"
}

// UpdatedKey returns the table key holding the last-updated date.
func (l Language) UpdatedKey() string {
	if l == PTBR {
		return "data"
	}
	return "updated"
}

// LevelKey returns the word used for the plain lowest-ranks slot.
func (l Language) LevelKey() string {
	if l == PTBR {
		return "nível"
	}
	return "level"
}

// RankKey returns the suffix used for the lowest-ranks rank slot.
func (l Language) RankKey() string {
	return "rank"
}

// EditSummary returns the edit summary used when saving the module.
func (l Language) EditSummary() string {
	if l == PTBR {
		return "Atualizando a contagem de recordes"
	}
	return "Updating hiscore counts"
}

var printers = map[Language]*message.Printer{
	EN:   message.NewPrinter(language.English),
	PTBR: message.NewPrinter(language.BrazilianPortuguese),
}

// FormatNumber renders n with the language's thousands separator.
func (l Language) FormatNumber(n int) string {
	return printers[l].Sprintf("%d", n)
}

var ptBRMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatDate renders t in the language's module date format:
// "02 January 2006" for English, "02 de janeiro de 2006" for pt-br.
func (l Language) FormatDate(t time.Time) string {
	if l == PTBR {
		return fmt.Sprintf("%02d de %s de %d", t.Day(), ptBRMonths[t.Month()-1], t.Year())
	}
	return t.Format("02 January 2006")
}

// TableName returns the localized storage key of a table.
func (l Language) TableName(t Table) string {
	if l == PTBR {
		return ptBRTables[t]
	}
	return t.Key()
}

var ptBRTables = [...]string{
	Count99s:           "contagem_99s",
	Count99sIronman:    "contagem_99s_independente",
	Count120s:          "contagem_120s",
	Count120sIronman:   "contagem_120s_independente",
	Count200mXP:        "contagem_200mxp",
	Count200mXPIronman: "contagem_200mxp_independente",
	LowestRanks:        "nivel_minimo",
}

// SkillName returns the localized module key of a skill.
func (l Language) SkillName(s hiscores.Skill) string {
	if l == PTBR {
		if int(s) < len(ptBRSkills) {
			return ptBRSkills[s]
		}
	}
	return s.String()
}

var ptBRSkills = [...]string{
	hiscores.Overall:       "total",
	hiscores.Attack:        "ataque",
	hiscores.Defence:       "defesa",
	hiscores.Strength:      "força",
	hiscores.Constitution:  "constituição",
	hiscores.Ranged:        "combate à distância",
	hiscores.Prayer:        "oração",
	hiscores.Magic:         "magia",
	hiscores.Cooking:       "culinária",
	hiscores.Woodcutting:   "corte de lenha",
	hiscores.Fletching:     "arco e flecha",
	hiscores.Fishing:       "pesca",
	hiscores.Firemaking:    "arte do fogo",
	hiscores.Crafting:      "artesanato",
	hiscores.Smithing:      "metalurgia",
	hiscores.Mining:        "mineração",
	hiscores.Herblore:      "herbologia",
	hiscores.Agility:       "agilidade",
	hiscores.Thieving:      "roubo",
	hiscores.Slayer:        "extermínio",
	hiscores.Farming:       "agricultura",
	hiscores.Runecrafting:  "criação de runas",
	hiscores.Hunter:        "caça",
	hiscores.Construction:  "construção",
	hiscores.Summoning:     "evocação",
	hiscores.Dungeoneering: "dungeon",
	hiscores.Divination:    "adivinhação",
	hiscores.Invention:     "invenção",
	hiscores.Archaeology:   "arqueologia",
}
