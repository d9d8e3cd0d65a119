// Package docs registers the OpenAPI document served at /docs.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/predictions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Predict a matchup",
                "parameters": [
                    {"type": "string", "description": "ensemble, linear, rating or strength", "name": "model", "in": "query"},
                    {"description": "Matchup", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PredictRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MLPrediction"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/predictions/recent": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Recent predictions",
                "parameters": [
                    {"type": "string", "description": "Sport filter", "name": "sport", "in": "query"},
                    {"type": "integer", "description": "Max rows (default 50, max 500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PredictionLogEntry"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/games/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Predict a scheduled game",
                "parameters": [
                    {"description": "Game", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/logic.PredictGameRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.GamePrediction"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/games/{gameID}/resolve": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Evaluations"],
                "summary": "Resolve a completed game",
                "parameters": [
                    {"type": "string", "description": "Game ID", "name": "gameID", "in": "path", "required": true},
                    {"description": "Final score", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ResolveGameRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PredictionEvaluation"}}}
                }
            }
        },
        "/evaluations": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Evaluations"],
                "summary": "Evaluate a prediction",
                "parameters": [
                    {"description": "Evaluation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/logic.EvaluateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.PredictionEvaluation"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/performance/{sport}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Performance"],
                "summary": "Model performance analysis",
                "parameters": [
                    {"type": "string", "name": "sport", "in": "path", "required": true},
                    {"type": "string", "name": "league", "in": "query"},
                    {"type": "string", "name": "model", "in": "query"},
                    {"type": "string", "description": "week, month, season or all", "name": "range", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ModelPerformanceAnalysis"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/performance/{sport}/calibration": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Performance"],
                "summary": "Calibration analysis",
                "parameters": [
                    {"type": "string", "name": "sport", "in": "path", "required": true},
                    {"type": "string", "name": "model", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CalibrationReport"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/performance/{sport}/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Performance"],
                "summary": "Cached model metrics",
                "parameters": [
                    {"type": "string", "name": "sport", "in": "path", "required": true},
                    {"type": "string", "name": "league", "in": "query"},
                    {"type": "string", "name": "model", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PredictionMetrics"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/monitor": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Monitoring"],
                "summary": "Run a monitoring pass",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MonitorReport"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.PredictRequest": {
            "type": "object",
            "required": ["away_stats", "home_stats"],
            "properties": {
                "home_stats": {"$ref": "#/definitions/models.TeamStats"},
                "away_stats": {"$ref": "#/definitions/models.TeamStats"},
                "context": {"$ref": "#/definitions/models.GameContext"}
            }
        },
        "handlers.ResolveGameRequest": {
            "type": "object",
            "required": ["away_score", "home_score"],
            "properties": {
                "home_score": {"type": "number"},
                "away_score": {"type": "number"}
            }
        },
        "logic.EvaluateRequest": {
            "type": "object",
            "required": ["model_name", "prediction_id", "sport"],
            "properties": {
                "prediction_id": {"type": "string"},
                "actual_outcome": {"type": "string"},
                "predicted_outcome": {"type": "string"},
                "probability": {"type": "number", "maximum": 1, "minimum": 0},
                "sport": {"type": "string"},
                "league": {"type": "string"},
                "model_name": {"type": "string"}
            }
        },
        "logic.PredictGameRequest": {
            "type": "object",
            "required": ["away_team_id", "home_team_id"],
            "properties": {
                "game_id": {"type": "string"},
                "home_team_id": {"type": "string"},
                "away_team_id": {"type": "string"},
                "league": {"type": "string"},
                "season": {"type": "string"},
                "game_type": {"type": "string"},
                "model": {"type": "string"},
                "as_of": {"type": "string"},
                "context": {"$ref": "#/definitions/models.GameContext"}
            }
        },
        "models.Record": {
            "type": "object",
            "properties": {
                "wins": {"type": "integer"},
                "losses": {"type": "integer"},
                "ties": {"type": "integer"}
            }
        },
        "models.TeamStats": {
            "type": "object",
            "properties": {
                "team_id": {"type": "string"},
                "wins": {"type": "integer"},
                "losses": {"type": "integer"},
                "ties": {"type": "integer"},
                "points_for": {"type": "number"},
                "points_against": {"type": "number"},
                "home_record": {"$ref": "#/definitions/models.Record"},
                "away_record": {"$ref": "#/definitions/models.Record"},
                "recent_form": {"type": "array", "items": {"type": "string"}},
                "strength_of_schedule": {"type": "number"},
                "avg_margin_of_victory": {"type": "number"},
                "consistency": {"type": "number"}
            }
        },
        "models.Weather": {
            "type": "object",
            "properties": {
                "condition": {"type": "string"},
                "temperature_f": {"type": "number"},
                "wind_mph": {"type": "number"}
            }
        },
        "models.GameContext": {
            "type": "object",
            "required": ["sport"],
            "properties": {
                "sport": {"type": "string"},
                "venue": {"type": "string"},
                "is_playoffs": {"type": "boolean"},
                "is_rivalry": {"type": "boolean"},
                "rest_days": {"type": "integer"},
                "away_rest_days": {"type": "integer"},
                "travel_distance": {"type": "number"},
                "weather": {"$ref": "#/definitions/models.Weather"},
                "injuries": {"type": "object"}
            }
        },
        "models.MLPrediction": {
            "type": "object",
            "properties": {
                "model": {"type": "string"},
                "home_win_probability": {"type": "number"},
                "away_win_probability": {"type": "number"},
                "predicted_spread": {"type": "number"},
                "predicted_total": {"type": "number"},
                "confidence": {"type": "number"},
                "factors": {"type": "array", "items": {"type": "string"}},
                "feature_importance": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.GamePrediction": {
            "type": "object",
            "properties": {
                "prediction_id": {"type": "string"},
                "game_id": {"type": "string"},
                "home_team_id": {"type": "string"},
                "away_team_id": {"type": "string"},
                "sport": {"type": "string"},
                "league": {"type": "string"},
                "prediction": {"$ref": "#/definitions/models.MLPrediction"},
                "created_at": {"type": "string"}
            }
        },
        "models.PredictionLogEntry": {
            "type": "object",
            "properties": {
                "prediction_id": {"type": "string"},
                "game_id": {"type": "string"},
                "model": {"type": "string"},
                "sport": {"type": "string"},
                "league": {"type": "string"},
                "home_team_id": {"type": "string"},
                "away_team_id": {"type": "string"},
                "home_win_probability": {"type": "number"},
                "predicted_spread": {"type": "number"},
                "predicted_total": {"type": "number"},
                "confidence": {"type": "number"},
                "created_at": {"type": "string"}
            }
        },
        "models.PredictionEvaluation": {
            "type": "object",
            "properties": {
                "prediction_id": {"type": "string"},
                "actual_outcome": {"type": "string"},
                "predicted_outcome": {"type": "string"},
                "probability": {"type": "number"},
                "is_correct": {"type": "boolean"},
                "error": {"type": "number"},
                "calibration_bin": {"type": "integer"},
                "profit_loss": {"type": "number"},
                "sport": {"type": "string"},
                "league": {"type": "string"},
                "model_name": {"type": "string"},
                "evaluated_at": {"type": "string"}
            }
        },
        "models.PredictionMetrics": {
            "type": "object",
            "properties": {
                "model_name": {"type": "string"},
                "sport": {"type": "string"},
                "league": {"type": "string"},
                "total_predictions": {"type": "integer"},
                "correct_predictions": {"type": "integer"},
                "accuracy": {"type": "number"},
                "precision": {"type": "number"},
                "recall": {"type": "number"},
                "f1_score": {"type": "number"},
                "brier_score": {"type": "number"},
                "profitability": {"type": "number"},
                "last_updated": {"type": "string"}
            }
        },
        "models.PerformanceTrends": {
            "type": "object",
            "properties": {
                "accuracy": {"type": "array", "items": {"type": "number"}},
                "profitability": {"type": "array", "items": {"type": "number"}},
                "confidence": {"type": "array", "items": {"type": "number"}},
                "recent_form": {"type": "string", "enum": ["improving", "declining", "stable"]}
            }
        },
        "models.ModelPerformanceAnalysis": {
            "type": "object",
            "properties": {
                "overall": {"$ref": "#/definitions/models.PredictionMetrics"},
                "by_confidence_level": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.PredictionMetrics"}},
                "by_season": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.PredictionMetrics"}},
                "by_game_type": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.PredictionMetrics"}},
                "trends": {"$ref": "#/definitions/models.PerformanceTrends"},
                "recommendations": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.CalibrationPoint": {
            "type": "object",
            "properties": {
                "bin": {"type": "integer"},
                "predicted_probability": {"type": "number"},
                "observed_accuracy": {"type": "number"},
                "count": {"type": "integer"}
            }
        },
        "models.CalibrationReport": {
            "type": "object",
            "properties": {
                "calibration_curve": {"type": "array", "items": {"$ref": "#/definitions/models.CalibrationPoint"}},
                "calibration_score": {"type": "number"},
                "is_well_calibrated": {"type": "boolean"},
                "recommendations": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Alert": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "enum": ["error", "warning", "info"]},
                "message": {"type": "string"},
                "timestamp": {"type": "string"},
                "source": {"type": "string"},
                "resolved": {"type": "boolean"}
            }
        },
        "models.MonitorReport": {
            "type": "object",
            "properties": {
                "alerts": {"type": "array", "items": {"$ref": "#/definitions/models.Alert"}},
                "model_health_scores": {"type": "object", "additionalProperties": {"type": "number"}},
                "recommended_actions": {"type": "array", "items": {"type": "string"}},
                "generated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Apex Prediction API",
	Description:      "Game outcome predictions, evaluation tracking and model performance analysis.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
