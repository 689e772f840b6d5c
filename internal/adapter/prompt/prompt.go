// Package prompt holds the fixed instruction shared by the generation
// providers.
package prompt

import "fmt"

const System = "You are an assistant for question-answering tasks."

const userTemplate = "Use the following pieces of retrieved context to answer the question. " +
	"If you don't know the answer, just say that you don't know.\n" +
	"ONLY output the final answer. Do NOT repeat the question, the context, " +
	"or any part of this instruction.\n" +
	"Question: %s\n" +
	"Context: %s\n" +
	"Answer:"

func User(query, contextText string) string {
	return fmt.Sprintf(userTemplate, query, contextText)
}
