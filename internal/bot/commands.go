package bot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/game"
	"github.com/hakari-tcg/hakari/internal/store"
)

const (
	colorGreen  = 0x2ecc71
	colorPurple = 0x9b59b6
)

// PingHandler answers with a constant.
func PingHandler(t *CommandTask) {
	t.Cluster.InteractionResponseEdit(t.InteractionToken, Message{Content: "Pong!"})
}

// DropHandler opens a pack for the invoking Discord user and formats the
// result as a card embed. imageBaseURL is joined with the first card's
// character id to produce the embed image.
func DropHandler(imageBaseURL string) Handler {
	return func(t *CommandTask) {
		ctx := t.Context()

		player, err := t.Data.FindOrCreatePlayerByDiscordID(ctx, t.UserID)
		if err != nil {
			t.Log.Error("drop: resolving player", zap.Error(err), zap.Int64("discordId", t.UserID))
			t.Cluster.InteractionResponseEdit(t.InteractionToken,
				Message{Content: "An internal error has occurred. Please try again later."})
			return
		}

		result, err := game.OpenPackForPlayer(ctx, t.Data, player, game.PackSize)
		if err != nil {
			t.Log.Error("drop: opening pack", zap.Error(err), zap.Int64("discordId", t.UserID))
			t.Cluster.InteractionResponseEdit(t.InteractionToken,
				Message{Content: "An internal error has occurred. Please try again later."})
			return
		}
		if !result.Success {
			t.Cluster.InteractionResponseEdit(t.InteractionToken, Message{Content: result.Message})
			return
		}

		var description strings.Builder
		fmt.Fprintf(&description, "Congratulations! You received %d new cards:\n\n", len(result.OpenedReferences))
		for i, ref := range result.OpenedReferences {
			fmt.Fprintf(&description, "• **%s** (#%d)\n", ref.Name, result.OpenedObjects[i].Number)
		}

		embed := Embed{
			Title:       "Pack Opened!",
			Description: description.String(),
			Color:       colorGreen,
		}
		if len(result.OpenedReferences) > 0 {
			embed.Image = imageBaseURL + result.OpenedReferences[0].CharacterID.Hex()
		}
		t.Cluster.InteractionResponseEdit(t.InteractionToken, Message{Embeds: []Embed{embed}})
	}
}

// CollectionHandler lists the invoking user's owned cards with name and
// issue number, one line each.
func CollectionHandler(t *CommandTask) {
	ctx := t.Context()

	player, err := t.Data.FindOrCreatePlayerByDiscordID(ctx, t.UserID)
	if err != nil {
		t.Log.Error("collection: resolving player", zap.Error(err), zap.Int64("discordId", t.UserID))
		t.Cluster.InteractionResponseEdit(t.InteractionToken,
			Message{Content: "An internal error has occurred. Please try again later."})
		return
	}

	objects, err := t.Data.CardObjects.Find(ctx, store.NewQuery().Eq("ownerId", player.ID))
	if err != nil {
		t.Log.Error("collection: loading cards", zap.Error(err), zap.Int64("discordId", t.UserID))
		t.Cluster.InteractionResponseEdit(t.InteractionToken,
			Message{Content: "An internal error has occurred. Please try again later."})
		return
	}
	if len(objects) == 0 {
		t.Cluster.InteractionResponseEdit(t.InteractionToken,
			Message{Content: "Your collection is empty. Try /drop to open a pack!"})
		return
	}

	var lines strings.Builder
	for _, obj := range objects {
		ref, err := t.Data.CardReferences.FindOne(ctx, store.ByID(obj.CardReferenceID))
		if err != nil || ref == nil {
			continue
		}
		fmt.Fprintf(&lines, "| **%s** | iss#%d |\n", ref.Name, obj.Number)
	}

	t.Cluster.InteractionResponseEdit(t.InteractionToken, Message{Embeds: []Embed{{
		Title:       "Collection",
		Description: lines.String(),
		Color:       colorPurple,
	}}})
}
