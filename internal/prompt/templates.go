package prompt

import (
	"fmt"

	"github.com/xaenox/herdbot/internal/vocabulary"
)

const preamble = `You are a knowledgeable assistant for dairy farmers and cattle keepers in India.
Answer practically and accurately, in simple words a farmer can act on.
If a question needs a veterinarian, say so clearly.`

const languageTemplate = "Respond only in %s."

const questionTemplate = "User question: %s"

const genericSubtopicTemplate = "Focus on the %[2]s of the %[1]s breed."

type topicTemplates struct {
	full      string
	subtopics map[string]string
}

// templates holds the instruction text per topic. Every template takes the
// breed name as its only argument.
var templates = map[vocabulary.Topic]topicTemplates{
	vocabulary.General: {
		full: "Provide a general overview of the %s breed: its origin, physical characteristics, productivity and common uses.",
		subtopics: map[string]string{
			"origin":          "Explain the origin and history of the %s breed, including its native region.",
			"characteristics": "Describe the physical characteristics of the %s breed: size, colour, body weight and distinctive traits.",
			"productivity":    "Give details on the milk yield and productivity of the %s breed, including typical lactation figures.",
			"uses":            "Describe the main uses of the %s breed, such as dairy, draught work or dual purpose.",
		},
	},
	vocabulary.Care: {
		full: "Provide care guidelines for the %s breed covering feeding, housing, grooming and seasonal management.",
		subtopics: map[string]string{
			"feeding":  "Give a feeding and nutrition plan suited to the %s breed, including green fodder, dry fodder, concentrates and water.",
			"housing":  "Describe ideal housing and shelter arrangements for the %s breed.",
			"grooming": "Explain grooming and hygiene practices for the %s breed.",
			"seasonal": "Describe how to manage the %s breed through summer, monsoon and winter.",
		},
	},
	vocabulary.Breeding: {
		full: "Provide breeding guidance for the %s breed covering mating, heat detection, pregnancy and calf care.",
		subtopics: map[string]string{
			"mating":    "Explain mating and artificial insemination practices for the %s breed, including bull selection.",
			"pregnancy": "Describe pregnancy care and calving management for the %s breed.",
			"heat":      "Explain how to detect heat (estrus) in the %s breed and the best time for insemination.",
			"calf":      "Give guidance on caring for newborn %s calves, including colostrum feeding and weaning.",
		},
	},
	vocabulary.Disease: {
		full: "Provide an overview of common diseases of the %s breed, their symptoms, prevention and treatment.",
		subtopics: map[string]string{
			"symptoms":   "List the warning signs and symptoms of illness to watch for in the %s breed.",
			"prevention": "Describe preventive health care for the %s breed, including vaccination and deworming schedules.",
			"treatment":  "Outline treatment options for common illnesses in the %s breed and advise when to call a veterinarian.",
			"common":     "Describe the diseases most common in the %s breed, such as mastitis, foot-and-mouth disease and lumpy skin disease.",
		},
	},
}

func fullTemplate(topic vocabulary.Topic, breed string) string {
	return fmt.Sprintf(templates[topic].full, breed)
}

func subtopicTemplate(topic vocabulary.Topic, subtopic, breed string) string {
	if tmpl, ok := templates[topic].subtopics[subtopic]; ok {
		return fmt.Sprintf(tmpl, breed)
	}
	return fmt.Sprintf(genericSubtopicTemplate, breed, subtopic)
}
