package controller

import (
	"github.com/benbeisheim/chessrules/internal/middleware"
	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/gofiber/fiber/v2"
)

type MatchController struct {
	matchService *service.MatchService
}

func NewMatchController(matchService *service.MatchService) *MatchController {
	return &MatchController{matchService: matchService}
}

func (mc *MatchController) CreateMatch(c *fiber.Ctx) error {
	matchID, err := mc.matchService.CreateMatch()
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Match created",
		"matchId": matchID,
	})
}

func (mc *MatchController) JoinMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	playerID := middleware.PlayerID(c)

	color, err := mc.matchService.JoinMatch(matchID, playerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Match joined",
		"color":   color,
	})
}

func (mc *MatchController) GetMatchState(c *fiber.Ctx) error {
	state, err := mc.matchService.GetMatchState(c.Params("matchId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// PlayMove applies a move for the requesting player and returns the new
// state. Connected sockets receive the same state as a broadcast.
func (mc *MatchController) PlayMove(c *fiber.Ctx) error {
	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid request body",
			Code:    CodeInvalidRequest,
			Details: err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation failed",
			Code:    CodeInvalidRequest,
			Details: validationDetails(err),
		})
	}
	move, err := req.Move()
	if err != nil {
		return respondError(c, err)
	}

	state, err := mc.matchService.PlayTurn(c.Params("matchId"), middleware.PlayerID(c), move)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// Destinations lists where the piece on ?row=&col= may move. Either
// coordinate missing counts as off the board.
func (mc *MatchController) Destinations(c *fiber.Ctx) error {
	pos := model.Position{
		Row: c.QueryInt("row", -1),
		Col: c.QueryInt("col", -1),
	}
	destinations, err := mc.matchService.Destinations(c.Params("matchId"), pos)
	if err != nil {
		return respondError(c, err)
	}
	if destinations == nil {
		destinations = []model.Position{}
	}
	return c.JSON(fiber.Map{
		"from":         pos,
		"destinations": destinations,
	})
}

func (mc *MatchController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := mc.matchService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
