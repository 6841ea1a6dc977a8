package llm

import (
	"fmt"
	"strings"
)

// BlockSeparator delimits blocks in the model's answer
const BlockSeparator = "===BLOCK==="

// splitSystemPrompt frames every split request
const splitSystemPrompt = "Tu segmentes des notes d'atelier métier sans jamais en modifier le texte."

// BuildSplitPrompt constructs the instruction asking the model to partition paragraph
// into blocks that each carry exactly one business fact.
func BuildSplitPrompt(paragraph string, maxWords int) string {
	return fmt.Sprintf(`Découpe le texte ci-dessous, extrait de notes d'atelier, en blocs sémantiquement autonomes.
Chaque bloc doit :
- être compréhensible seul ;
- décrire UN SEUL fait métier (une règle de gestion, un volume, un écart, un besoin, un document, un problème) ;
- reprendre mot pour mot les termes du domaine (ex. "BL", "ordre de fabrication", "workflow de validation") ;
- compter de préférence au plus %d mots.
Ne résume pas, ne reformule pas, ne traduis pas.
Renvoie UNIQUEMENT les blocs, séparés par la ligne %s.

Texte :
%s

Réponse :`, maxWords, BlockSeparator, strings.TrimSpace(paragraph))
}

// ParseBlocks splits a model answer on BlockSeparator, trims each block and drops
// empty ones.
func ParseBlocks(response string) []string {
	parts := strings.Split(response, BlockSeparator)
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			blocks = append(blocks, p)
		}
	}
	return blocks
}
