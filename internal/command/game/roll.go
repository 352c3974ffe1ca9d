package game

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}
)

type rollTerm struct {
	value int
	desc  string
	op    string
}

// EvaluateFormula rolls a dice expression like `2d6+1d4*2-3`. Multiplication
// and division bind tighter than addition; division is integer division.
// Returns the total and a calculation trace showing every individual roll.
func EvaluateFormula(formula string) (int, string, error) {
	formula = strings.ReplaceAll(formula, " ", "")
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 {
		return 0, "", errors.New("can't parse the formula, try something like `2d6+1d4*2-3`")
	}

	var terms []rollTerm
	currentOp := "+"
	for _, token := range tokens {
		if validOps[token] {
			currentOp = token
			continue
		}
		val, desc, err := rollToken(token)
		if err != nil {
			return 0, "", fmt.Errorf("failed to evaluate `%s`: %w", token, err)
		}
		terms = append(terms, rollTerm{value: val, desc: desc, op: currentOp})
	}

	// Collapse * and / into their left neighbor first.
	var merged []rollTerm
	for _, t := range terms {
		if t.op == "*" || t.op == "/" {
			if len(merged) == 0 {
				return 0, "", errors.New("can't multiply or divide by nothing")
			}
			prev := merged[len(merged)-1]
			merged = merged[:len(merged)-1]

			var val int
			switch t.op {
			case "*":
				val = prev.value * t.value
			case "/":
				if t.value == 0 {
					return 0, "", errors.New("can't divide by zero")
				}
				val = prev.value / t.value
			}
			merged = append(merged, rollTerm{
				value: val,
				desc:  fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
				op:    prev.op,
			})
		} else {
			merged = append(merged, t)
		}
	}

	total := 0
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, fmt.Sprintf(" %s ", t.op))
		}
		details = append(details, t.desc)

		switch t.op {
		case "+":
			total += t.value
		case "-":
			total -= t.value
		}
	}

	return total, strings.Join(details, ""), nil
}

func rollToken(token string) (int, string, error) {
	if diceRegex.MatchString(token) {
		matches := diceRegex.FindStringSubmatch(token)
		countStr, sidesStr := matches[1], matches[2]

		count := 1
		if countStr != "" {
			n, err := strconv.Atoi(countStr)
			if err != nil {
				return 0, "", errors.New("invalid dice count")
			}
			count = n
		}

		sides, err := strconv.Atoi(sidesStr)
		if err != nil || sides < 2 {
			return 0, "", errors.New("invalid dice sides")
		}
		if count > 100 || sides > 1000 {
			return 0, "", errors.New("too big, max 100 dice with 1000 sides")
		}

		var sum int
		var rolls []string
		for i := 0; i < count; i++ {
			r := rand.Intn(sides) + 1
			sum += r
			rolls = append(rolls, strconv.Itoa(r))
		}
		return sum, fmt.Sprintf("`%s` [%s]", token, strings.Join(rolls, ", ")), nil
	}

	num, err := strconv.Atoi(token)
	if err != nil {
		return 0, "", errors.New("not a number or dice")
	}
	return num, fmt.Sprintf("`%d`", num), nil
}

func (c *DiceCommand) runFormula(s *discordgo.Session, e *discordgo.InteractionCreate, formula string) error {
	total, pretty, err := EvaluateFormula(formula)
	if err != nil {
		return bot.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("🎲 %v", err),
		})
	}

	return bot.RespondEmbed(s, e, &discordgo.MessageEmbed{
		Title: "🎲 Dice Roll",
		Description: fmt.Sprintf("**User Input**:\t`%s`\n**Calculation**:\t%s\n**Result**:\t**%d**",
			strings.ReplaceAll(formula, " ", ""), pretty, total),
		Color: bot.EmbedColor,
	})
}
