package ai

// 规则回退路径使用的固定回复文案
// 远程模型不可用或调用失败时，助手按规则表返回这些内容

const greetingResponse = `Hello! 👋 I'm your KindBite AI assistant, here to help you with:

🍽️ **Food & Nutrition Questions** - Ask about ingredients, recipes, or nutritional info
🌱 **Sustainability Tips** - Learn how to reduce food waste and environmental impact
🛡️ **Food Safety** - Get guidance on safe food handling and storage
📱 **KindBite Platform** - Learn how to use our app and features
🏆 **KindCoins & Impact** - Understand our reward system and environmental benefits

What would you like to know about? Just ask me anything related to food or KindBite!`

const aboutPlatformResponse = `🌱 **About KindBite**

KindBite is a revolutionary food waste reduction platform that connects food providers (restaurants, home kitchens, supermarkets, factories) with food seekers to prevent good food from going to waste. Our mission is to create a sustainable food ecosystem where excess food finds its way to people who need it.`

const howItWorksResponse = `🔄 **How KindBite Works**

KindBite works through a simple 4-step process:
1. Food providers list their surplus food items with details and pickup times
2. Food seekers browse available items in their area through our app
3. Users reserve items they want and earn KindCoins for their environmental impact
4. Pickup is arranged directly between provider and seeker

Every transaction helps reduce food waste and supports our community!`

const userRolesResponse = `👥 **User Roles in KindBite**

KindBite supports various user types:
• End Users (Food Seekers) - Find and reserve surplus food
• Restaurants - List excess meals and ingredients
• Home Kitchens - Share home-cooked surplus food
• Food Factories - Distribute surplus production
• Supermarkets - Offer near-expiry items
• Retail Shops - Share unsold food products
• Food Verifiers - Ensure food safety standards
• Food Ambassadors - Promote community engagement
• Donors/Buyers - Support the ecosystem financially`

const kindCoinsResponse = `🪙 **About KindCoins**

KindCoins are our reward system that tracks your positive environmental impact:
• Earn KindCoins for every food item you save from waste
• Each KindCoin represents measurable environmental benefits
• Track your impact: CO2 saved, water conserved, packaging reduced
• Use KindCoins for future transactions and community rewards
• Build your reputation as an eco-conscious community member`

const environmentResponse = `🌍 **Environmental Impact**

Every action on KindBite creates measurable environmental benefits:
• CO2 Reduction: Each saved meal prevents ~2.5kg of CO2 emissions
• Water Conservation: Food production uses massive amounts of water
• Packaging Waste: Reducing food waste also reduces packaging waste
• Food Miles: Local food sharing reduces transportation emissions
• Landfill Diversion: Prevents organic waste from producing methane`

const foodSafetyResponse = `🛡️ **Food Safety Guidelines**

Food safety is our top priority! Here are key guidelines:
• Check expiration dates and food appearance before consuming
• Ensure proper storage temperature was maintained
• Trust your senses - if something looks, smells, or tastes off, don't eat it
• When in doubt, don't risk it - food safety comes first
• Report any food safety concerns to our Food Verifiers`

const storageResponse = `❄️ **Food Storage Tips**

Proper food storage tips:
• Refrigerated items: Keep at 40°F (4°C) or below
• Frozen items: Maintain at 0°F (-18°C) or below
• Dry goods: Store in cool, dry places away from direct sunlight
• Fresh produce: Different items have different storage needs
• Leftovers: Consume within 3-4 days when properly refrigerated`

const pickupResponse = `🚗 **Safe Food Pickup**

Safe food pickup guidelines:
• Verify pickup time and location with the provider
• Bring insulated bags for temperature-sensitive items
• Check food condition upon pickup
• Ask about storage conditions and preparation time
• Transport food safely and consume promptly`

const cookingResponse = `👨‍🍳 **Cooking & Recipes**

I'd love to help with cooking tips! Here are some ideas:
• **Quick meals** with surplus ingredients
• **Food preservation** techniques to extend freshness
• **Creative recipes** to use up leftover ingredients
• **Batch cooking** tips to minimize waste

What specific ingredients or type of recipe are you looking for? I can suggest ways to make delicious meals while reducing food waste!`

const nutritionResponse = `🥗 **Nutrition & Health**

Eating rescued food can be both healthy and sustainable! Here's what to consider:
• **Check nutritional labels** on packaged items
• **Fresh produce** near expiry often retains most nutrients
• **Variety is key** - different foods provide different nutrients
• **Proper storage** helps maintain nutritional value

Would you like specific nutritional information about certain foods, or tips on maintaining a healthy diet while using KindBite?`

const wasteResponse = `♻️ **Reducing Food Waste**

Great question! Here are effective strategies:
• **Plan meals** around what you have
• **Use the FIFO method** (First In, First Out) for your pantry
• **Get creative with leftovers** - transform them into new dishes
• **Proper storage** extends food life significantly
• **Share surplus** through KindBite when you can't use it all

Every small action counts toward reducing the 1.3 billion tons of food wasted globally each year!`

const defaultResponse = `🤖 **I'm here to help!**

I specialize in questions about:
• **KindBite platform** - how it works, features, and benefits
• **Food safety** - storage, handling, and safety guidelines
• **Nutrition** - healthy eating and food information
• **Sustainability** - reducing food waste and environmental impact
• **Recipes & Cooking** - making the most of available ingredients

Could you rephrase your question or ask about any of these topics? I'm always learning and want to give you the most helpful response possible!

For urgent food safety concerns, please contact our Food Verifiers directly through the app.`

