package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chatlog-api/internal/config"
	"chatlog-api/internal/db"
	"chatlog-api/internal/domain"
	"chatlog-api/internal/reply"
	"chatlog-api/internal/repository"
	"chatlog-api/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal(err)
		}
	}

	store := repository.NewPgStore(pool)
	chatSvc := service.NewChatService(logger, store)
	conversationSvc := service.NewConversationService(logger, store, reply.NewStatic(cfg.ReplyText), nil)

	for {
		fmt.Println("===== Chats =====")
		chats, err := chatSvc.ListChats(ctx)
		if err != nil {
			log.Fatalf("listar chats: %v", err)
		}
		for i, c := range chats {
			fmt.Printf("[%d] %s (ID: %s)\n", i+1, displayName(c.Name), c.ID)
		}
		fmt.Println("[N] Nuevo chat")
		fmt.Println("[Q] Salir")
		fmt.Print("Selecciona un chat: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		var selected domain.ChatSummary
		switch {
		case strings.EqualFold(choice, "Q"):
			return
		case strings.EqualFold(choice, "N"):
			fmt.Print("Nombre: ")
			name, _ := reader.ReadString('\n')
			chat, err := chatSvc.CreateChat(ctx, strings.TrimSpace(name))
			if err != nil {
				fmt.Printf("Error creando chat: %v\n", err)
				continue
			}
			selected = domain.ChatSummary{ID: chat.ID, Name: chat.Name}
		default:
			idx, err := strconv.Atoi(choice)
			if err != nil || idx < 1 || idx > len(chats) {
				fmt.Println("Seleccion invalida.")
				continue
			}
			selected = chats[idx-1]
		}

		if err := chatFlow(ctx, reader, selected, chatSvc, conversationSvc); err != nil {
			fmt.Printf("Error en chat: %v\n", err)
		}
	}
}

func chatFlow(ctx context.Context, reader *bufio.Reader, chat domain.ChatSummary, chatSvc *service.ChatService, conversationSvc *service.ConversationService) error {
	history, err := chatSvc.History(ctx, chat.ID)
	if err != nil {
		return err
	}
	fmt.Printf("\n--- %s ---\n", strings.ToUpper(displayName(chat.Name)))
	for _, h := range history {
		fmt.Printf("%s > %s\n", h.Role, h.Content)
	}

	fmt.Println("---- Modo Chat (escribe 'salir' para terminar, '/file nombre ruta tipo' para adjuntar) ----")
	for {
		fmt.Print("user > ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.EqualFold(strings.TrimSpace(line), "salir") {
			fmt.Println("Saliendo del chat...")
			return nil
		}

		if strings.HasPrefix(line, "/file ") {
			parts := strings.Fields(strings.TrimPrefix(line, "/file "))
			if len(parts) < 2 {
				fmt.Println("uso: /file nombre ruta [tipo]")
				continue
			}
			input := service.AddFileInput{Name: parts[0], Path: parts[1]}
			if len(parts) > 2 {
				input.FileType = parts[2]
			}
			file, err := chatSvc.AddFile(ctx, chat.ID, input)
			if err != nil {
				fmt.Printf("error registrando archivo: %v\n", err)
				continue
			}
			fmt.Printf("archivo registrado (ID: %s)\n", file.ID)
			continue
		}

		_, systemMsg, err := conversationSvc.AppendExchange(ctx, chat.ID, line)
		if err != nil {
			if errors.Is(err, service.ErrReplyGeneration) {
				fmt.Printf("mensaje guardado, pero fallo la respuesta: %v\n", err)
				continue
			}
			return err
		}
		fmt.Printf("%s > %s\n", systemMsg.Role, systemMsg.Content)
	}
}

func displayName(name *string) string {
	if name == nil || *name == "" {
		return "(sin nombre)"
	}
	return *name
}
