package openai

import "strings"

// categories are the entity labels the models are asked to emit.
var categories = []string{
	"Marca", "Modelo", "Procesador", "RAM", "Almacenamiento",
	"Tarjeta gráfica", "Pulgadas", "Precio", "Frecuencia procesador",
}

func queryPrompt() string {
	return "You label entities in laptop search queries written in Spanish. " +
		"Allowed categories: " + strings.Join(categories, ", ") + ". " +
		"Return each entity with its category and the exact substring of the query as text, " +
		"in order of appearance. Do not translate or normalize the text. " +
		`Reply with JSON only: {"entities":[{"category":"...","text":"..."}]}.`
}

func documentPrompt() string {
	return "You extract fields from laptop spec sheets written in Spanish. " +
		"Allowed categories: " + strings.Join(categories, ", ") + ". " +
		"Return at most one entity per category with the value exactly as printed " +
		"and a confidence between 0 and 1. Omit fields that are not present. " +
		`Reply with JSON only: {"entities":[{"category":"...","text":"...","confidence":0.9}]}.`
}
