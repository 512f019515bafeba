// Package prepscore embeds the prepscore answer evaluator in a Go program.
//
// The client scores interview answers in-process: semantic relevance through
// an embedding model, grammar quality through LanguageTool and a perfection
// bonus for answers that restate the question. Backends that fail degrade to
// neutral values instead of failing the evaluation.
//
//	client, _ := prepscore.New(ctx,
//	    prepscore.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small"),
//	    prepscore.WithLanguageTool("https://api.languagetool.org"),
//	)
//	defer client.Close()
//
//	score, _ := client.Evaluate(ctx, "What is a goroutine?", "A goroutine is ...")
//	fmt.Println(score.Score, score.Degraded)
//
// Voice metrics need no backend:
//
//	m := prepscore.ClassifyVoice(180) // pace "good", clarity "clear"
package prepscore
